package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/course-harvester/internal/adapter/htmlpage"
	"github.com/user/course-harvester/internal/entity"
	"go.uber.org/zap"
)

func newTestHarvester(s *fakeSession) *LinkHarvester {
	return NewLinkHarvester(s, NewClassifier(testTable()), DefaultSelectors(), zap.NewNop())
}

func hrefs(links []entity.ResourceLink) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Href
	}
	return out
}

func TestHarvestKeepsDownloadableInOrder(t *testing.T) {
	s := newFakeSession()
	s.lists["a.aalink"] = []*fakeElement{
		anchor("A", "icon-pdf"),
		anchor("B", "icon-folder"),
		anchor("C", "icon-pdf"),
	}

	links, err := Collect(newTestHarvester(s).Harvest(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, hrefs(links))
	assert.Equal(t, entity.IconSignature("icon-pdf"), links[0].Icon)
}

func TestHarvestSkipsMissingHrefAndIcon(t *testing.T) {
	empty := anchor("", "icon-pdf")
	empty.attrs["href"] = ""

	s := newFakeSession()
	s.lists["a.aalink"] = []*fakeElement{
		anchor("", "icon-pdf"),
		empty,
		anchor("D", ""),
		anchor("E", "icon-unknown"),
		anchor("F", "icon-pdf"),
	}

	links, err := Collect(newTestHarvester(s).Harvest(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{"F"}, hrefs(links))
}

func TestHarvestPropagatesSessionError(t *testing.T) {
	s := newFakeSession()
	s.findErr = errSession

	_, err := Collect(newTestHarvester(s).Harvest(context.Background()))
	assert.ErrorIs(t, err, errSession)
}

func TestHarvestIsSingleUse(t *testing.T) {
	s := newFakeSession()
	s.lists["a.aalink"] = []*fakeElement{anchor("A", "icon-pdf")}
	seq := newTestHarvester(s).Harvest(context.Background())

	links, err := Collect(seq)
	require.NoError(t, err)
	assert.Len(t, links, 1)

	_, err = Collect(seq)
	assert.ErrorIs(t, err, ErrHarvestConsumed)
}

func TestHarvestStopsWhenConsumerStops(t *testing.T) {
	s := newFakeSession()
	s.lists["a.aalink"] = []*fakeElement{anchor("A", "icon-pdf"), anchor("C", "icon-pdf")}

	var got []string
	for link, err := range newTestHarvester(s).Harvest(context.Background()) {
		require.NoError(t, err)
		got = append(got, link.Href)
		break
	}
	assert.Equal(t, []string{"A"}, got)
}

func TestHarvestSavedCoursePage(t *testing.T) {
	const page = `<html><body>
<a class="aalink" href="https://moodle.example.edu/mod/resource/view.php?id=1"><img src="icon-pdf"></a>
<a class="aalink" href="https://moodle.example.edu/mod/folder/view.php?id=2"><img src="icon-folder"></a>
<a class="aalink" href="https://moodle.example.edu/mod/resource/view.php?id=3"><img src="icon-pdf"></a>
<a class="aalink"><img src="icon-pdf"></a>
</body></html>`
	doc, err := htmlpage.Parse(strings.NewReader(page), "")
	require.NoError(t, err)

	h := NewLinkHarvester(doc, NewClassifier(testTable()), DefaultSelectors(), zap.NewNop())
	links, err := Collect(h.Harvest(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://moodle.example.edu/mod/resource/view.php?id=1",
		"https://moodle.example.edu/mod/resource/view.php?id=3",
	}, hrefs(links))
}

func TestHarvestSkipsUnparseableURLs(t *testing.T) {
	const page = `<html><body>
<a class="aalink" href="https://moodle.example.edu/mod/resource/view.php?id=1"><img src="icon-pdf"></a>
<a class="aalink" href="https://moodle.example.edu/mod/resource/view.php?id=2"><img src="%zz bad"></a>
<a class="aalink" href="%zz bad"><img src="icon-pdf"></a>
<a class="aalink" href="https://moodle.example.edu/mod/resource/view.php?id=4"><img src="icon-pdf"></a>
</body></html>`
	doc, err := htmlpage.Parse(strings.NewReader(page), "")
	require.NoError(t, err)

	h := NewLinkHarvester(doc, NewClassifier(testTable()), DefaultSelectors(), zap.NewNop())
	links, err := Collect(h.Harvest(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://moodle.example.edu/mod/resource/view.php?id=1",
		"https://moodle.example.edu/mod/resource/view.php?id=4",
	}, hrefs(links))
}
