package render

import (
	"sort"
	"sync"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/registry"
)

// ClickEvent is a pointer click in page coordinates.
type ClickEvent struct {
	PageX  float64
	PageY  float64
	Target *Node
}

// CreateForm carries the values of the creation modal.
type CreateForm struct {
	Content     string
	AuthorName  string
	AuthorEmail string
	Category    domain.Category
	Priority    domain.Priority
}

// CreateHandlers are invoked by the creation modal.
type CreateHandlers struct {
	Submit func(CreateForm)
	Cancel func()
}

// DetailsHandlers are invoked by the details modal.
type DetailsHandlers struct {
	Save   func(domain.CommentUpdate)
	Delete func()
	Close  func()
}

type modalKind int

const (
	modalNone modalKind = iota
	modalCreate
	modalDetails
)

// Document is an in-memory page the overlay renders into. It keeps the
// element tree, dispatches simulated clicks and records alerts.
//
// Callbacks are always invoked without holding the document lock, so
// handlers may call back into the document.
type Document struct {
	mu sync.Mutex

	body    *Node
	toggle  *Node
	overlay *Node
	modal   *Node
	theme   Theme

	toggleClick func()
	pins        map[string]*Node
	pinClicks   map[string]func()
	// Pin labels count up per activation and are never reused.
	labels    map[string]int
	lastLabel int

	listeners    map[int]func(ClickEvent)
	nextListener int

	modalKind modalKind
	create    CreateHandlers
	details   DetailsHandlers

	alerts []string

	// ConfirmFunc answers destructive-action prompts. Nil declines.
	ConfirmFunc func(msg string) bool
}

// NewDocument creates an empty page.
func NewDocument() *Document {
	return &Document{
		body:      El("body"),
		theme:     ThemeLight,
		pins:      make(map[string]*Node),
		pinClicks: make(map[string]func()),
		labels:    make(map[string]int),
		listeners: make(map[int]func(ClickEvent)),
	}
}

// Body returns the root element. Callers must not mutate it concurrently
// with the overlay.
func (d *Document) Body() *Node { return d.body }

// ─────────────────────────────
// View implementation
// ─────────────────────────────

func (d *Document) MountToggle(theme Theme, corner Corner, onClick func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.toggle != nil {
		d.toggle.Detach()
	}
	d.theme = theme
	d.toggle = ToggleNode(theme, corner, true)
	d.toggleClick = onClick
	d.body.Append(d.toggle)
}

func (d *Document) SetConnected(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.toggle != nil {
		SetToggleMode(d.toggle, connected)
	}
}

func (d *Document) RemoveToggle() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.toggle != nil {
		d.toggle.Detach()
	}
	d.toggle = nil
	d.toggleClick = nil
}

func (d *Document) MountOverlay(theme Theme) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.overlay != nil {
		d.overlay.Detach()
	}
	d.overlay = OverlayNode(theme)
	d.body.Append(d.overlay)
	d.resetLabelsLocked()
	if d.toggle != nil {
		d.toggle.AddClass(ToggleActive)
	}
}

func (d *Document) UnmountOverlay() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeModalLocked()
	if d.overlay != nil {
		d.overlay.Detach()
	}
	d.overlay = nil
	d.pins = make(map[string]*Node)
	d.pinClicks = make(map[string]func())
	d.resetLabelsLocked()
	if d.toggle != nil {
		d.toggle.RemoveClass(ToggleActive)
	}
}

func (d *Document) RenderPin(pin *registry.Pin, onClick func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.overlay == nil {
		return
	}
	number, ok := d.labels[pin.ID]
	if !ok {
		d.lastLabel++
		number = d.lastLabel
		d.labels[pin.ID] = number
	}
	n := PinNode(pin, number)
	if old := d.pins[pin.ID]; old != nil && old.Parent == d.overlay {
		old.ReplaceWith(n)
	} else {
		d.overlay.Append(n)
	}
	d.pins[pin.ID] = n
	d.pinClicks[pin.ID] = onClick
}

func (d *Document) RemovePin(pinID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n := d.pins[pinID]; n != nil {
		n.Detach()
	}
	delete(d.pins, pinID)
	delete(d.pinClicks, pinID)
	delete(d.labels, pinID)
}

func (d *Document) ClearPins() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, n := range d.pins {
		n.Detach()
	}
	d.pins = make(map[string]*Node)
	d.pinClicks = make(map[string]func())
	d.resetLabelsLocked()
}

func (d *Document) resetLabelsLocked() {
	d.labels = make(map[string]int)
	d.lastLabel = 0
}

func (d *Document) OpenCreateModal(pos domain.Position, h CreateHandlers) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeModalLocked()
	d.modal = CreateModalNode(pos, d.theme)
	d.modalKind = modalCreate
	d.create = h
	d.mountModalLocked()
}

func (d *Document) OpenDetailsModal(pin *registry.Pin, h DetailsHandlers) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeModalLocked()
	d.modal = DetailsModalNode(pin.Comment, d.theme)
	d.modal.SetAttr("data-pin-id", pin.ID)
	d.modalKind = modalDetails
	d.details = h
	d.mountModalLocked()
}

func (d *Document) CloseModal() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeModalLocked()
}

func (d *Document) Alert(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.alerts = append(d.alerts, msg)
}

func (d *Document) Confirm(msg string) bool {
	d.mu.Lock()
	fn := d.ConfirmFunc
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	return fn(msg)
}

// AddClickListener registers a capture-phase click listener and returns
// the function removing it.
func (d *Document) AddClickListener(fn func(ClickEvent)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextListener
	d.nextListener++
	d.listeners[id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners, id)
	}
}

func (d *Document) mountModalLocked() {
	parent := d.overlay
	if parent == nil {
		parent = d.body
	}
	parent.Append(d.modal)
}

func (d *Document) closeModalLocked() {
	if d.modal != nil {
		d.modal.Detach()
	}
	d.modal = nil
	d.modalKind = modalNone
	d.create = CreateHandlers{}
	d.details = DetailsHandlers{}
}

// ─────────────────────────────
// Interaction (what a user would do)
// ─────────────────────────────

// Click dispatches a click on target: capture listeners first, then the
// pin or toggle handler owning target.
func (d *Document) Click(target *Node, pageX, pageY float64) {
	if target == nil {
		target = d.body
	}
	ev := ClickEvent{PageX: pageX, PageY: pageY, Target: target}

	d.mu.Lock()
	ids := make([]int, 0, len(d.listeners))
	for id := range d.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]func(ClickEvent), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, d.listeners[id])
	}

	var handler func()
	if pin := target.Closest(PinSelector); pin != nil {
		handler = d.pinClicks[pin.Attr("data-pin-id")]
	} else if target.Closest(ToggleSelector) != nil {
		handler = d.toggleClick
	}
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
	if handler != nil {
		handler()
	}
}

// ClickBackground clicks an empty spot of the page.
func (d *Document) ClickBackground(pageX, pageY float64) {
	d.Click(d.body, pageX, pageY)
}

// ClickToggle clicks the toggle control. It reports false when absent.
func (d *Document) ClickToggle() bool {
	d.mu.Lock()
	t := d.toggle
	d.mu.Unlock()

	if t == nil {
		return false
	}
	d.Click(t, 0, 0)
	return true
}

// ClickPin clicks the rendered pin. It reports false when not rendered.
func (d *Document) ClickPin(pinID string) bool {
	d.mu.Lock()
	n := d.pins[pinID]
	d.mu.Unlock()

	if n == nil {
		return false
	}
	d.Click(n, 0, 0)
	return true
}

// SubmitCreate submits the open creation modal. It reports false when
// no creation modal is open.
func (d *Document) SubmitCreate(form CreateForm) bool {
	d.mu.Lock()
	h := d.create
	open := d.modalKind == modalCreate
	d.mu.Unlock()

	if !open || h.Submit == nil {
		return false
	}
	h.Submit(form)
	return true
}

// SaveDetails submits the open details modal.
func (d *Document) SaveDetails(u domain.CommentUpdate) bool {
	d.mu.Lock()
	h := d.details
	open := d.modalKind == modalDetails
	d.mu.Unlock()

	if !open || h.Save == nil {
		return false
	}
	h.Save(u)
	return true
}

// DeleteFromDetails presses the delete button of the open details modal.
func (d *Document) DeleteFromDetails() bool {
	d.mu.Lock()
	h := d.details
	open := d.modalKind == modalDetails
	d.mu.Unlock()

	if !open || h.Delete == nil {
		return false
	}
	h.Delete()
	return true
}

// CancelModal dismisses whichever modal is open.
func (d *Document) CancelModal() {
	d.mu.Lock()
	kind := d.modalKind
	create, details := d.create, d.details
	d.mu.Unlock()

	switch {
	case kind == modalCreate && create.Cancel != nil:
		create.Cancel()
	case kind == modalDetails && details.Close != nil:
		details.Close()
	default:
		d.CloseModal()
	}
}

// ─────────────────────────────
// Inspection
// ─────────────────────────────

// Alerts returns every message shown to the user so far.
func (d *Document) Alerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, len(d.alerts))
	copy(out, d.alerts)
	return out
}

// ModalOpen reports whether a modal is shown.
func (d *Document) ModalOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modal != nil
}

// Modal returns the open modal element, or nil.
func (d *Document) Modal() *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modal
}

// Toggle returns the toggle element, or nil.
func (d *Document) Toggle() *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.toggle
}

// OverlayMounted reports whether the overlay container is in the page.
func (d *Document) OverlayMounted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlay != nil
}

// PinNode returns the rendered element of pinID, or nil.
func (d *Document) PinNode(pinID string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pins[pinID]
}

// PinCount returns how many pins are rendered.
func (d *Document) PinCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pins)
}

// ListenerCount returns how many click listeners are attached.
func (d *Document) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// HTML serialises the whole page.
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return HTML(d.body)
}
