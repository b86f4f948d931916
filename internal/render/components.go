package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/registry"
)

// Theme selects the overlay palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Corner is the screen corner hosting the toggle control.
type Corner string

const (
	CornerTopRight    Corner = "top-right"
	CornerTopLeft     Corner = "top-left"
	CornerBottomRight Corner = "bottom-right"
	CornerBottomLeft  Corner = "bottom-left"
)

// Valid reports whether c is a known corner.
func (c Corner) Valid() bool {
	switch c {
	case CornerTopRight, CornerTopLeft, CornerBottomRight, CornerBottomLeft:
		return true
	}
	return false
}

// Element ids and classes the controller hit-tests against.
const (
	ToggleID     = "ui-comment-toggle"
	OverlayID    = "ui-comment-overlay"
	PinClass     = "ui-comment-pin"
	ModalClass   = "ui-comment-modal"
	ResolvedPin  = "resolved"
	ToggleActive = "active"

	PinSelector    = "." + PinClass
	ModalSelector  = "." + ModalClass
	ToggleSelector = "#" + ToggleID
)

const previewLen = 80

// ToggleNode builds the floating button that activates the overlay.
func ToggleNode(theme Theme, corner Corner, connected bool) *Node {
	n := El("button", "ui-comment-toggle", "theme-"+string(theme)).
		WithID(ToggleID).
		WithText("💬").
		SetAttr("type", "button")
	n.SetStyle("position", "fixed")
	n.SetStyle("z-index", "10001")

	vertical, horizontal, _ := strings.Cut(string(corner), "-")
	n.SetStyle(vertical, "20px")
	n.SetStyle(horizontal, "20px")

	SetToggleMode(n, connected)
	return n
}

// SetToggleMode reflects the operating mode on the toggle control.
func SetToggleMode(n *Node, connected bool) {
	n.RemoveClass("mode-connected")
	n.RemoveClass("mode-standalone")
	if connected {
		n.AddClass("mode-connected")
		n.SetAttr("title", "Toggle comments")
		return
	}
	n.AddClass("mode-standalone")
	n.SetAttr("title", "Toggle comments (offline: saved in this browser)")
}

// OverlayNode builds the full-page container hosting pins and modals.
func OverlayNode(theme Theme) *Node {
	n := El("div", "ui-comment-overlay", "theme-"+string(theme)).WithID(OverlayID)
	n.SetStyle("position", "absolute")
	n.SetStyle("top", "0")
	n.SetStyle("left", "0")
	n.SetStyle("z-index", "10000")
	return n
}

// PinNode builds the marker for one pin, anchored in page coordinates.
func PinNode(pin *registry.Pin, number int) *Node {
	n := El("div", PinClass).
		WithText(strconv.Itoa(number)).
		SetAttr("data-pin-id", pin.ID)
	if pin.Comment.HasID() {
		n.SetAttr("data-comment-id", strconv.FormatInt(pin.Comment.IDValue(), 10))
	}
	n.SetAttr("title", preview(pin.Comment.Content))
	n.SetStyle("position", "absolute")
	n.SetStyle("left", px(pin.Position.X))
	n.SetStyle("top", px(pin.Position.Y))
	n.AddClass("priority-" + strings.ToLower(string(pin.Comment.Priority)))
	if pin.Comment.IsSettled() {
		n.AddClass(ResolvedPin)
	}
	return n
}

// CreateModalNode builds the form used to place a new comment.
func CreateModalNode(pos domain.Position, theme Theme) *Node {
	form := El("form", "ui-comment-form").Append(
		El("textarea").SetAttr("name", "content").SetAttr("required", "required").
			SetAttr("placeholder", "Describe the issue or suggestion..."),
		El("input").SetAttr("name", "authorName").SetAttr("type", "text").
			SetAttr("placeholder", "Your name (optional)"),
		El("input").SetAttr("name", "authorEmail").SetAttr("type", "email").
			SetAttr("placeholder", "Your email (optional)"),
		selectNode("category", categoryValues(), string(domain.CategoryGeneral)),
		selectNode("priority", priorityValues(), string(domain.PriorityMedium)),
		El("div", "ui-comment-actions").Append(
			El("button", "ui-comment-cancel").SetAttr("type", "button").WithText("Cancel"),
			El("button", "ui-comment-submit").SetAttr("type", "submit").WithText("Add comment"),
		),
	)

	return modal(theme, "Add comment", form).
		SetAttr("data-x", strconv.FormatFloat(pos.X, 'f', -1, 64)).
		SetAttr("data-y", strconv.FormatFloat(pos.Y, 'f', -1, 64))
}

// DetailsModalNode builds the view/edit modal of an existing comment.
func DetailsModalNode(c *domain.Comment, theme Theme) *Node {
	body := El("div", "ui-comment-content")
	body.RawHTML = Markdown(c.Content)

	meta := El("dl", "ui-comment-meta")
	addMeta := func(label, val string) {
		if val == "" {
			return
		}
		meta.Append(El("dt").WithText(label), El("dd").WithText(val))
	}
	addMeta("Author", author(c))
	addMeta("Category", string(c.Category))
	addMeta("Assigned to", c.AssignedTo)
	addMeta("Resolution", c.Resolution)
	if c.CreatedAt != nil {
		addMeta("Created", c.CreatedAt.Format("2006-01-02 15:04"))
	}

	form := El("form", "ui-comment-form").Append(
		selectNode("status", statusValues(), string(c.Status)),
		selectNode("priority", priorityValues(), string(c.Priority)),
		El("div", "ui-comment-actions").Append(
			El("button", "ui-comment-delete").SetAttr("type", "button").WithText("Delete"),
			El("button", "ui-comment-close").SetAttr("type", "button").WithText("Close"),
			El("button", "ui-comment-save").SetAttr("type", "submit").WithText("Save"),
		),
	)

	title := "Comment"
	if c.HasID() {
		title = fmt.Sprintf("Comment #%d", c.IDValue())
	}
	n := modal(theme, title, body, meta, form)
	if c.IsSettled() {
		n.AddClass(ResolvedPin)
	}
	return n
}

func modal(theme Theme, title string, children ...*Node) *Node {
	return El("div", ModalClass, "theme-"+string(theme)).Append(
		El("div", "ui-comment-modal-content").Append(
			append([]*Node{El("h3").WithText(title)}, children...)...,
		),
	)
}

func selectNode(name string, values []string, selected string) *Node {
	s := El("select").SetAttr("name", name)
	for _, v := range values {
		opt := El("option").SetAttr("value", v).WithText(label(v))
		if v == selected {
			opt.SetAttr("selected", "selected")
		}
		s.Append(opt)
	}
	return s
}

func label(v string) string {
	words := strings.Split(strings.ToLower(v), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func author(c *domain.Comment) string {
	switch {
	case c.AuthorName != "" && c.AuthorEmail != "":
		return fmt.Sprintf("%s <%s>", c.AuthorName, c.AuthorEmail)
	case c.AuthorName != "":
		return c.AuthorName
	default:
		return c.AuthorEmail
	}
}

func preview(content string) string {
	r := []rune(strings.TrimSpace(content))
	if len(r) <= previewLen {
		return string(r)
	}
	return string(r[:previewLen]) + "..."
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func statusValues() []string {
	out := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		out = append(out, string(s))
	}
	return out
}

func priorityValues() []string {
	out := make([]string, 0, len(domain.Priorities))
	for _, p := range domain.Priorities {
		out = append(out, string(p))
	}
	return out
}

func categoryValues() []string {
	out := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, string(c))
	}
	return out
}
