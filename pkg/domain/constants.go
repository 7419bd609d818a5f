package domain

// MouseButton selects which button click-style operations press.
// The zero value presses the left button.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// ClickAction translates the button into the wire verb for a single click.
// Unknown buttons fail with an InvalidArgumentError before anything is sent.
func (b MouseButton) ClickAction() (string, error) {
	switch b {
	case "", ButtonLeft:
		return "click", nil
	case ButtonRight:
		return "rightclick", nil
	case ButtonMiddle:
		return "middleclick", nil
	}
	return "", &InvalidArgumentError{
		Argument: "mouse button",
		Value:    string(b),
		Allowed:  []string{string(ButtonLeft), string(ButtonRight), string(ButtonMiddle)},
	}
}

// CheckState mirrors the check mark of a model item. The probe may report
// states outside the listed constants; they are passed through untouched.
type CheckState string

const (
	Unchecked        CheckState = "unchecked"
	PartiallyChecked CheckState = "partiallyChecked"
	Checked          CheckState = "checked"
)

// WindowKind narrows which top-level widget an active-widget lookup means.
// The probe treats anything it does not recognize as WindowAny.
type WindowKind string

const (
	WindowAny   WindowKind = ""      // the active window
	WindowModal WindowKind = "modal" // the active modal dialog
	WindowPopup WindowKind = "popup" // the active popup
	WindowFocus WindowKind = "focus" // the widget holding keyboard focus
)

// Orientation selects one of the two header bars of an item view.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Origin anchors item clicks inside the visual rectangle of an item.
type Origin string

const (
	OriginCenter Origin = "center"
	OriginLeft   Origin = "left"
	OriginRight  Origin = "right"
)
