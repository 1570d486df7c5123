package composer

import (
	"testing"

	"github.com/lagoonchat/lagoon/internal/api"
)

func TestDraftContent(t *testing.T) {
	d := NewDraft()

	d.SetContent("hello")
	d.AppendText(" world")
	d.InsertNewline()
	d.AppendText("second line")

	want := "hello world\nsecond line"
	if got := d.Content(); got != want {
		t.Errorf("Content() = %q, want %q", got, want)
	}
}

func TestDraftAttachmentOrder(t *testing.T) {
	d := NewDraft()

	d.appendAttachments([]api.Attachment{{ID: "a"}, {ID: "b"}})
	d.appendAttachments([]api.Attachment{{ID: "c"}})

	got := d.Attachments()
	wantIDs := []string{"a", "b", "c"}
	if len(got) != len(wantIDs) {
		t.Fatalf("len(Attachments()) = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("Attachments()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestDraftRemoveAttachment(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		wantOK    bool
		wantIDs   []string
		wantEpoch uint64
	}{
		{name: "middle", index: 1, wantOK: true, wantIDs: []string{"a", "c"}, wantEpoch: 1},
		{name: "first", index: 0, wantOK: true, wantIDs: []string{"b", "c"}, wantEpoch: 1},
		{name: "negative", index: -1, wantOK: false, wantIDs: []string{"a", "b", "c"}, wantEpoch: 0},
		{name: "out of range", index: 3, wantOK: false, wantIDs: []string{"a", "b", "c"}, wantEpoch: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft()
			d.SetAttachments([]api.Attachment{{ID: "a"}, {ID: "b"}, {ID: "c"}})

			if ok := d.RemoveAttachment(tt.index); ok != tt.wantOK {
				t.Fatalf("RemoveAttachment(%d) = %v, want %v", tt.index, ok, tt.wantOK)
			}
			got := d.Attachments()
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len(Attachments()) = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("Attachments()[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
			if got := d.FileResetEpoch(); got != tt.wantEpoch {
				t.Errorf("FileResetEpoch() = %d, want %d", got, tt.wantEpoch)
			}
			if got := d.ResetEpoch(); got != 0 {
				t.Errorf("ResetEpoch() = %d, want 0 (removal must not reset the input)", got)
			}
		})
	}
}

func TestDraftClear(t *testing.T) {
	d := NewDraft()
	d.SetContent("draft text")
	d.SetAttachments([]api.Attachment{{ID: "a"}})
	d.beginBatch(2)
	d.setUploadProgress(0.5)

	epoch := d.Clear()

	if epoch != 1 {
		t.Errorf("Clear() = %d, want 1", epoch)
	}
	if got := d.Content(); got != "" {
		t.Errorf("Content() after Clear = %q, want empty", got)
	}
	if got := d.AttachmentCount(); got != 0 {
		t.Errorf("AttachmentCount() after Clear = %d, want 0", got)
	}
	if got := d.PendingUploads(); got != 0 {
		t.Errorf("PendingUploads() after Clear = %d, want 0", got)
	}
	if got := d.UploadProgress(); got != 0 {
		t.Errorf("UploadProgress() after Clear = %v, want 0", got)
	}
	if got := d.FileResetEpoch(); got != 1 {
		t.Errorf("FileResetEpoch() after Clear = %d, want 1", got)
	}

	if second := d.Clear(); second != 2 {
		t.Errorf("second Clear() = %d, want 2", second)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	d := NewDraft()
	d.SetContent("before")
	d.SetAttachments([]api.Attachment{{ID: "a"}})

	snap := d.Snapshot()

	// Mutations after the snapshot must not leak into it.
	d.SetContent("after")
	d.RemoveAttachment(0)

	if snap.Content != "before" {
		t.Errorf("snap.Content = %q, want %q", snap.Content, "before")
	}
	if len(snap.Attachments) != 1 || snap.Attachments[0].ID != "a" {
		t.Errorf("snap.Attachments = %v, want the captured attachment", snap.Attachments)
	}
}

func TestSnapshotIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{name: "empty", snap: Snapshot{}, want: true},
		{name: "text only", snap: Snapshot{Content: "hi"}, want: false},
		{name: "attachment only", snap: Snapshot{Attachments: []api.Attachment{{ID: "a"}}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotMediaIDs(t *testing.T) {
	snap := Snapshot{Attachments: []api.Attachment{{ID: "x"}, {ID: "y"}}}
	got := snap.MediaIDs()
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("MediaIDs() = %v, want [x y]", got)
	}

	if got := (Snapshot{}).MediaIDs(); got != nil {
		t.Errorf("MediaIDs() on empty snapshot = %v, want nil", got)
	}
}
