package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Status
		wantErr  bool
	}{
		{name: "upper case", input: "OPEN", expected: StatusOpen},
		{name: "lower case", input: "resolved", expected: StatusResolved},
		{name: "dash separator", input: "in-progress", expected: StatusInProgress},
		{name: "padded", input: "  closed ", expected: StatusClosed},
		{name: "unknown", input: "DONE", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseStatus(%q) should have failed", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParsePriorityAndCategory(t *testing.T) {
	if p, err := ParsePriority("critical"); err != nil || p != PriorityCritical {
		t.Errorf("ParsePriority(critical) = %v, %v", p, err)
	}
	if _, err := ParsePriority("URGENT"); err == nil {
		t.Error("ParsePriority(URGENT) should have failed")
	}
	if c, err := ParseCategory("Bug"); err != nil || c != CategoryBug {
		t.Errorf("ParseCategory(Bug) = %v, %v", c, err)
	}
	if _, err := ParseCategory("CHORE"); err == nil {
		t.Error("ParseCategory(CHORE) should have failed")
	}
}

func TestApplyDefaults(t *testing.T) {
	c := &Comment{PageURL: "https://example.com", Content: "hello"}
	c.ApplyDefaults()

	if c.Status != StatusOpen {
		t.Errorf("Status = %v, want OPEN", c.Status)
	}
	if c.Priority != PriorityMedium {
		t.Errorf("Priority = %v, want MEDIUM", c.Priority)
	}
	if c.Category != CategoryGeneral {
		t.Errorf("Category = %v, want GENERAL", c.Category)
	}

	// Explicit values survive
	c = &Comment{Priority: PriorityHigh, Category: CategoryBug, Status: StatusInProgress}
	c.ApplyDefaults()
	if c.Priority != PriorityHigh || c.Category != CategoryBug || c.Status != StatusInProgress {
		t.Errorf("ApplyDefaults() overwrote explicit values: %+v", c)
	}
}

func TestIsSettled(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusOpen, false},
		{StatusInProgress, false},
		{StatusResolved, true},
		{StatusClosed, true},
	}
	for _, tt := range tests {
		c := &Comment{Status: tt.status}
		if got := c.IsSettled(); got != tt.want {
			t.Errorf("IsSettled(%v) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCommentUpdateApply(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Comment{
		ID:        Int64Ptr(7),
		PageURL:   "https://example.com/a",
		Content:   "before",
		PositionX: 10,
		PositionY: 20,
		Status:    StatusOpen,
		Priority:  PriorityMedium,
		CreatedAt: TimePtr(created),
	}

	resolved := StatusResolved
	content := "after"
	now := created.Add(time.Hour)
	CommentUpdate{Status: &resolved, Content: &content}.Apply(c, now)

	if c.Status != StatusResolved || c.Content != "after" {
		t.Errorf("Apply() did not merge fields: %+v", c)
	}
	if c.Priority != PriorityMedium {
		t.Errorf("Apply() touched an absent field: priority = %v", c.Priority)
	}
	if c.PositionX != 10 || c.PositionY != 20 || c.PageURL != "https://example.com/a" {
		t.Errorf("Apply() changed identity fields: %+v", c)
	}
	if c.UpdatedAt == nil || !c.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", c.UpdatedAt, now)
	}
	if !c.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed to %v", c.CreatedAt)
	}
}

func TestClone(t *testing.T) {
	c := &Comment{ID: Int64Ptr(3), Content: "x"}
	cp := c.Clone()
	*cp.ID = 99
	cp.Content = "y"

	if *c.ID != 3 || c.Content != "x" {
		t.Errorf("Clone() shares state with original: %+v", c)
	}
	if (*Comment)(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestValidateNew(t *testing.T) {
	valid := func() *Comment {
		return &Comment{PageURL: "https://example.com", Content: "hi", PositionX: 1, PositionY: 2}
	}

	tests := []struct {
		name       string
		mutate     func(c *Comment)
		wantFields []string
	}{
		{name: "valid minimal", mutate: func(c *Comment) {}},
		{name: "missing page url", mutate: func(c *Comment) { c.PageURL = " " }, wantFields: []string{"pageUrl"}},
		{name: "empty content", mutate: func(c *Comment) { c.Content = "" }, wantFields: []string{"content"}},
		{name: "negative positions", mutate: func(c *Comment) { c.PositionX = -1; c.PositionY = -2 }, wantFields: []string{"positionX", "positionY"}},
		{name: "bad email", mutate: func(c *Comment) { c.AuthorEmail = "nope" }, wantFields: []string{"authorEmail"}},
		{name: "named email rejected", mutate: func(c *Comment) { c.AuthorEmail = "Bob <bob@example.com>" }, wantFields: []string{"authorEmail"}},
		{name: "good email", mutate: func(c *Comment) { c.AuthorEmail = "bob@example.com" }},
		{name: "bad priority", mutate: func(c *Comment) { c.Priority = "URGENT" }, wantFields: []string{"priority"}},
		{name: "bad category", mutate: func(c *Comment) { c.Category = "CHORE" }, wantFields: []string{"category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := ValidateNew(c)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateNew() unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateNew() error = %v, want *ValidationError", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("ValidateNew() fields = %+v, want %v", verr.Fields, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if verr.Fields[i].Field != f {
					t.Errorf("field[%d] = %s, want %s", i, verr.Fields[i].Field, f)
				}
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	empty := ""
	bad := Status("DONE")
	good := StatusClosed

	if err := ValidateUpdate(CommentUpdate{Content: &empty}); err == nil {
		t.Error("empty content should be rejected")
	}
	if err := ValidateUpdate(CommentUpdate{Status: &bad}); err == nil {
		t.Error("unknown status should be rejected")
	}
	if err := ValidateUpdate(CommentUpdate{Status: &good}); err != nil {
		t.Errorf("valid status rejected: %v", err)
	}
	if err := ValidateUpdate(CommentUpdate{}); err != nil {
		t.Errorf("empty update rejected: %v", err)
	}
}
