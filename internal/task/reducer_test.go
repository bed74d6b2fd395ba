package task

import "testing"

func TestNewLocalIsProvisionalAndDirty(t *testing.T) {
	tk := NewLocal(170000000000, "t1", 3, "Buy milk", "2L", StatusTodo)

	if !tk.Provisional() {
		t.Error("Expected new local task to be provisional")
	}
	if !tk.Dirty() {
		t.Error("Expected new local task to be dirty")
	}
	if tk.IsDeleted {
		t.Error("Expected new local task to not be deleted")
	}
	if tk.ID != 170000000000 || tk.UserID != 3 {
		t.Errorf("Unexpected identity fields: id=%d user=%d", tk.ID, tk.UserID)
	}
}

func TestEditedMarksDirtyAndKeepsIdentity(t *testing.T) {
	tk := Task{ID: 7, UserID: 3, Title: "A", Status: StatusTodo, IsSynced: SyncDone}

	edited := Edited(tk, "B", "changed", StatusInProgress)

	if edited.Title != "B" || edited.Description != "changed" || edited.Status != StatusInProgress {
		t.Errorf("Edit not applied: %+v", edited)
	}
	if !edited.Dirty() {
		t.Error("Expected edited task to be dirty")
	}
	if edited.ID != 7 || edited.TempID != "" {
		t.Errorf("Identity fields changed: id=%d temp=%q", edited.ID, edited.TempID)
	}
	// Input value untouched
	if tk.Title != "A" || tk.IsSynced != SyncDone {
		t.Errorf("Input task mutated: %+v", tk)
	}
}

func TestMarkDeletedProducesTombstone(t *testing.T) {
	tk := Task{ID: 7, UserID: 3, Title: "A", Status: StatusTodo, IsSynced: SyncDone}

	dead := MarkDeleted(tk)

	if !dead.IsDeleted {
		t.Error("Expected tombstone flag set")
	}
	if !dead.Dirty() {
		t.Error("Expected tombstone to be dirty")
	}
}

func TestConfirmedClearsProvisionalMarkers(t *testing.T) {
	server := Task{ID: 42, UserID: 3, Title: "Buy milk", Status: StatusTodo, TempID: "t1"}

	got := Confirmed(server)

	if got.Dirty() {
		t.Error("Expected confirmed task to be synced")
	}
	if got.Provisional() {
		t.Error("Expected confirmed task to have no correlation token")
	}
	if got.ID != 42 {
		t.Errorf("Expected server id preserved, got %d", got.ID)
	}
}

func TestValidStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusTodo, true},
		{StatusInProgress, true},
		{StatusCompleted, true},
		{"Done", false},
		{"", false},
		{"to do", false},
	}

	for _, tt := range tests {
		if got := ValidStatus(tt.status); got != tt.want {
			t.Errorf("ValidStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestValidateRejectsMissingTitle(t *testing.T) {
	tk := NewLocal(1, "t1", 3, "", "", StatusTodo)
	if err := tk.Validate(); err == nil {
		t.Error("Expected validation error for empty title")
	}

	tk.Title = "ok"
	if err := tk.Validate(); err != nil {
		t.Errorf("Expected valid task, got %v", err)
	}
}

func TestValidateRejectsUnknownStatus(t *testing.T) {
	tk := NewLocal(1, "t1", 3, "ok", "", "Someday")
	if err := tk.Validate(); err == nil {
		t.Error("Expected validation error for unknown status")
	}
}
