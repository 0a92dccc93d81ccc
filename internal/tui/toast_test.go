package tui

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
)

func TestToast_ShowDisplaysMessage(t *testing.T) {
	toast := NewToast()

	cmd := toast.Show("report saved", ToastSuccess)

	if !toast.IsVisible() {
		t.Error("expected toast to be visible after Show()")
	}
	if toast.Message() != "report saved" {
		t.Errorf("expected message 'report saved', got %q", toast.Message())
	}
	if cmd == nil {
		t.Error("expected Show() to return a dismissal command")
	}
}

func TestToast_ViewReturnsEmptyWhenNotVisible(t *testing.T) {
	toast := NewToast()
	if view := toast.View(80, 24); view != "" {
		t.Errorf("expected empty view when not visible, got %q", view)
	}
}

func TestToast_ViewRendersMessageWhenVisible(t *testing.T) {
	toast := NewToast()
	toast.Show("export written", ToastInfo)

	view := toast.View(80, 24)
	if !strings.Contains(view, "export written") {
		t.Errorf("expected view to contain message, got %q", view)
	}
}

func TestToast_DismissAfterDeadlineHidesToast(t *testing.T) {
	toast := NewToast()
	toast.Show("report saved", ToastInfo)

	// Force the deadline into the past, then dismiss.
	toast.dismissAt = time.Now().Add(-time.Millisecond)
	cmd := toast.Update(ToastDismissMsg{})

	if toast.IsVisible() {
		t.Error("expected toast hidden after deadline dismiss")
	}
	if toast.Message() != "" {
		t.Error("expected message cleared after dismiss")
	}
	if cmd != nil {
		t.Error("expected no command after final dismiss")
	}
}

func TestToast_StaleDismissKeepsNewerToast(t *testing.T) {
	toast := NewToast()
	toast.Show("first", ToastInfo)
	toast.Show("second", ToastInfo)

	// A dismiss scheduled for the first toast arrives while the second is
	// still within its display window.
	cmd := toast.Update(ToastDismissMsg{})

	if !toast.IsVisible() {
		t.Error("expected newer toast to survive a stale dismiss")
	}
	if cmd == nil {
		t.Error("expected a re-scheduled dismiss command")
	}
}

func TestToast_ErrorsStayLonger(t *testing.T) {
	toast := NewToast()

	toast.Show("saved", ToastInfo)
	infoDeadline := toast.dismissAt

	toast.Show("request failed", ToastError)
	errDeadline := toast.dismissAt

	if !errDeadline.After(infoDeadline.Add(2 * time.Second)) {
		t.Error("expected error toast to hold longer than info toast")
	}
}

func TestToast_ViewPositionsBottomRight(t *testing.T) {
	toast := NewToast()
	toast.Show("saved", ToastInfo)

	view := toast.View(80, 24)
	lines := strings.Split(view, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines for positioning, got %d", len(lines))
	}
	if !strings.Contains(lines[len(lines)-1], "saved") {
		t.Errorf("expected toast content in last line, got %q", lines[len(lines)-1])
	}
}

func TestToast_ViewHandlesNarrowWidth(t *testing.T) {
	toast := NewToast()
	toast.Show("a very long notification message that exceeds the width", ToastInfo)

	if view := toast.View(10, 24); view == "" {
		t.Error("expected view even with narrow width")
	}
}

func TestToast_UpdateIgnoresOtherMessages(t *testing.T) {
	toast := NewToast()
	toast.Show("saved", ToastInfo)

	cmd := toast.Update(tea.KeyPressMsg{})

	if !toast.IsVisible() {
		t.Error("expected toast to remain visible after unrelated message")
	}
	if cmd != nil {
		t.Error("expected no command for unrelated message")
	}
}
