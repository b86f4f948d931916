package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/overlay"
	"github.com/MrSnakeDoc/pinned/internal/render"
)

// ProbeCmd reports the operating mode.
type ProbeCmd struct{}

func (p *ProbeCmd) Run(s *Session) error {
	fmt.Fprintf(s.out, "mode: %s\n", s.ctrl.Mode())
	fmt.Fprintf(s.out, "page: %s\n", s.ctrl.PageURL())
	fmt.Fprintf(s.out, "comments: %d\n", len(s.ctrl.Pins()))
	return nil
}

// ListCmd prints every pin of the page.
type ListCmd struct {
	JSON   bool   `help:"Print raw comments as JSON"`
	Status string `help:"Only show comments in this status"`
}

func (l *ListCmd) Run(s *Session) error {
	var want domain.Status
	if l.Status != "" {
		st, err := domain.ParseStatus(l.Status)
		if err != nil {
			return err
		}
		want = st
	}

	comments := make([]*domain.Comment, 0)
	for _, p := range s.ctrl.Pins() {
		if want != "" && p.Comment.Status != want {
			continue
		}
		comments = append(comments, p.Comment)
	}

	if l.JSON {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return enc.Encode(comments)
	}

	fmt.Fprintf(s.out, "%s · %s · %d comment(s)\n", s.ctrl.PageURL(), s.ctrl.Mode(), len(comments))
	if len(comments) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tCATEGORY\tPOSITION\tCONTENT")
	for _, c := range comments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.0f,%.0f\t%s\n",
			c.IDValue(), c.Status, c.Priority, c.Category, c.PositionX, c.PositionY, excerpt(c.Content, 60))
	}
	return tw.Flush()
}

// AddCmd pins a new comment.
type AddCmd struct {
	X        float64  `help:"Horizontal page offset in pixels" required:""`
	Y        float64  `help:"Vertical page offset in pixels" required:""`
	Author   string   `help:"Author name"`
	Email    string   `help:"Author email"`
	Category string   `help:"BUG, FEATURE, IMPROVEMENT, QUESTION or GENERAL"`
	Priority string   `help:"LOW, MEDIUM, HIGH or CRITICAL"`
	Content  []string `arg:"" help:"Comment text (markdown)"`
}

func (a *AddCmd) Run(s *Session) error {
	form := render.CreateForm{
		Content:     strings.Join(a.Content, " "),
		AuthorName:  a.Author,
		AuthorEmail: a.Email,
	}
	if a.Category != "" {
		cat, err := domain.ParseCategory(a.Category)
		if err != nil {
			return err
		}
		form.Category = cat
	}
	if a.Priority != "" {
		pr, err := domain.ParsePriority(a.Priority)
		if err != nil {
			return err
		}
		form.Priority = pr
	}

	pin, err := s.ctrl.SubmitCreate(s.ctx, domain.Position{X: a.X, Y: a.Y}, form)
	s.flushAlerts()
	if err != nil {
		return err
	}

	where := "remote"
	if s.ctrl.Mode() == overlay.ModeStandalone || isLocalID(pin.Comment.IDValue()) {
		where = "local"
	}
	fmt.Fprintf(s.out, "✅ comment %d pinned at %.0f,%.0f (%s)\n", pin.Comment.IDValue(), a.X, a.Y, where)
	return nil
}

// UpdateCmd applies a partial update.
type UpdateCmd struct {
	ID         int64   `arg:"" help:"Comment id"`
	Content    *string `help:"New content"`
	Status     string  `help:"OPEN, IN_PROGRESS, RESOLVED or CLOSED"`
	Priority   string  `help:"LOW, MEDIUM, HIGH or CRITICAL"`
	Category   string  `help:"BUG, FEATURE, IMPROVEMENT, QUESTION or GENERAL"`
	Resolution *string `help:"Resolution note"`
	Assign     *string `help:"Assignee"`
}

func (u *UpdateCmd) Run(s *Session) error {
	upd, err := u.build()
	if err != nil {
		return err
	}

	pin, err := s.pinByCommentID(u.ID)
	if err != nil {
		return err
	}

	c, err := s.ctrl.SubmitUpdate(s.ctx, pin, upd)
	s.flushAlerts()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "✅ comment %d updated (%s, %s)\n", c.IDValue(), c.Status, c.Priority)
	return nil
}

func (u *UpdateCmd) build() (domain.CommentUpdate, error) {
	upd := domain.CommentUpdate{
		Content:    u.Content,
		Resolution: u.Resolution,
		AssignedTo: u.Assign,
	}
	if u.Status != "" {
		st, err := domain.ParseStatus(u.Status)
		if err != nil {
			return upd, err
		}
		upd.Status = &st
	}
	if u.Priority != "" {
		pr, err := domain.ParsePriority(u.Priority)
		if err != nil {
			return upd, err
		}
		upd.Priority = &pr
	}
	if u.Category != "" {
		cat, err := domain.ParseCategory(u.Category)
		if err != nil {
			return upd, err
		}
		upd.Category = &cat
	}
	if upd.IsEmpty() {
		return upd, errors.New("nothing to update: pass at least one of --content, --status, --priority, --category, --resolution, --assign")
	}
	if err := domain.ValidateUpdate(upd); err != nil {
		return upd, err
	}
	return upd, nil
}

// DeleteCmd removes a comment after confirmation.
type DeleteCmd struct {
	ID  int64 `arg:"" help:"Comment id"`
	Yes bool  `help:"Do not ask for confirmation" short:"y"`
}

func (d *DeleteCmd) Run(s *Session) error {
	pin, err := s.pinByCommentID(d.ID)
	if err != nil {
		return err
	}

	s.doc.ConfirmFunc = func(msg string) bool {
		if d.Yes {
			return true
		}
		return s.confirm(msg)
	}

	err = s.ctrl.SubmitDelete(s.ctx, pin)
	s.flushAlerts()
	switch {
	case errors.Is(err, overlay.ErrDeleteCancelled):
		fmt.Fprintln(s.out, "cancelled")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(s.out, "🗑️  comment %d deleted\n", d.ID)
	return nil
}

// RenderCmd prints the page markup with the overlay active.
type RenderCmd struct {
	Open int64 `help:"Also open the details modal of this comment id"`
}

func (r *RenderCmd) Run(s *Session) error {
	if !s.ctrl.Active() {
		s.ctrl.Toggle()
	}
	if r.Open != 0 {
		pin, err := s.pinByCommentID(r.Open)
		if err != nil {
			return err
		}
		s.ctrl.OpenDetails(pin.ID)
	}
	_, err := fmt.Fprintln(s.out, s.doc.HTML())
	return err
}

// Local ids are millisecond timestamps; server ids are small sequences.
func isLocalID(id int64) bool {
	return id > 1_000_000_000_000
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
