package repository

// InputActionKind is the kind of a step in an input action sequence.
type InputActionKind int

const (
	ActionType InputActionKind = iota
	ActionClick
)

func (k InputActionKind) String() string {
	switch k {
	case ActionType:
		return "type"
	case ActionClick:
		return "click"
	default:
		return "unknown"
	}
}

// InputAction is one step of a composed input sequence.
type InputAction struct {
	Kind   InputActionKind
	Target Element
	Text   string
}

// TypeInto sends text as keystrokes to target.
func TypeInto(target Element, text string) InputAction {
	return InputAction{Kind: ActionType, Target: target, Text: text}
}

// ClickOn clicks target.
func ClickOn(target Element) InputAction {
	return InputAction{Kind: ActionClick, Target: target}
}
