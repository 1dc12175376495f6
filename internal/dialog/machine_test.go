package dialog

import (
	"context"
	"errors"
	"testing"

	"github.com/cemck/siddy/internal/naming"
	"github.com/cemck/siddy/internal/store"
)

type fakeSaver struct {
	saved map[string]store.Record
	data  map[string][]byte
	err   error
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{saved: make(map[string]store.Record), data: make(map[string][]byte)}
}

func (f *fakeSaver) Save(rec store.Record, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.saved[rec.Name] = rec
	f.data[rec.Name] = payload
	return nil
}

func (f *fakeSaver) Has(name string) bool {
	_, ok := f.saved[name]
	return ok
}

type fakeDownloader struct {
	payload []byte
	err     error
}

func (f *fakeDownloader) DownloadVoice(_ context.Context, fileID string) ([]byte, error) {
	return f.payload, f.err
}

func newTestMachine(saver *fakeSaver, dl *fakeDownloader) *Machine {
	return NewMachine(naming.NewPolicy(saver), saver, dl)
}

func TestFullDialog(t *testing.T) {
	saver := newFakeSaver()
	dl := &fakeDownloader{payload: []byte("ogg-bytes")}
	m := newTestMachine(saver, dl)

	if replaced := m.Begin(7); replaced {
		t.Error("Begin on idle user reported a replaced session")
	}
	if stage, ok := m.StageOf(7); !ok || stage != AwaitingName {
		t.Fatalf("StageOf = %v, %v; want AwaitingName", stage, ok)
	}

	name, err := m.SubmitName(7, "Greeting")
	if err != nil {
		t.Fatalf("SubmitName: %v", err)
	}
	if name != "greeting" {
		t.Errorf("accepted name = %q, want normalized %q", name, "greeting")
	}
	if stage, _ := m.StageOf(7); stage != AwaitingVoice {
		t.Fatalf("stage after name = %v, want AwaitingVoice", stage)
	}

	got, err := m.SubmitVoice(context.Background(), 7, "cemck", Clip{FileID: "f1", MediaID: "m123"})
	if err != nil {
		t.Fatalf("SubmitVoice: %v", err)
	}
	if got != "greeting" {
		t.Errorf("SubmitVoice name = %q", got)
	}

	if _, ok := m.StageOf(7); ok {
		t.Error("session still active after completion")
	}
	rec := saver.saved["greeting"]
	if rec.AuthorHandle != "cemck" || rec.MediaID != "m123" {
		t.Errorf("saved record = %+v", rec)
	}
	if string(saver.data["greeting"]) != "ogg-bytes" {
		t.Errorf("saved payload = %q", saver.data["greeting"])
	}
}

func TestNameCollisionKeepsSession(t *testing.T) {
	saver := newFakeSaver()
	saver.saved["alpha"] = store.Record{Name: "alpha"}
	m := newTestMachine(saver, &fakeDownloader{})

	m.Begin(7)

	for _, raw := range []string{"alpha", "ALPHA"} {
		name, err := m.SubmitName(7, raw)
		if !errors.Is(err, naming.ErrNameTaken) {
			t.Errorf("SubmitName(%q) = %v, want ErrNameTaken", raw, err)
		}
		if name != "alpha" {
			t.Errorf("rejected name echoed as %q, want %q", name, "alpha")
		}
		if stage, ok := m.StageOf(7); !ok || stage != AwaitingName {
			t.Errorf("after rejected name: stage = %v, %v; want AwaitingName", stage, ok)
		}
	}

	// Session must still be usable with a fresh name.
	if _, err := m.SubmitName(7, "beta"); err != nil {
		t.Errorf("SubmitName(beta) after rejection: %v", err)
	}
}

func TestCancel(t *testing.T) {
	m := newTestMachine(newFakeSaver(), &fakeDownloader{})

	if had := m.Cancel(7); had {
		t.Error("Cancel with no session reported an active one")
	}

	m.Begin(7)
	if had := m.Cancel(7); !had {
		t.Error("Cancel in AwaitingName reported no session")
	}
	if _, ok := m.StageOf(7); ok {
		t.Error("session survived Cancel")
	}

	m.Begin(7)
	if _, err := m.SubmitName(7, "beta"); err != nil {
		t.Fatalf("SubmitName: %v", err)
	}
	if had := m.Cancel(7); !had {
		t.Error("Cancel in AwaitingVoice reported no session")
	}
}

func TestBeginReplacesActiveSession(t *testing.T) {
	m := newTestMachine(newFakeSaver(), &fakeDownloader{})

	m.Begin(7)
	if _, err := m.SubmitName(7, "beta"); err != nil {
		t.Fatalf("SubmitName: %v", err)
	}

	if replaced := m.Begin(7); !replaced {
		t.Error("Begin mid-dialog did not report replacement")
	}
	if stage, _ := m.StageOf(7); stage != AwaitingName {
		t.Errorf("stage after restart = %v, want AwaitingName", stage)
	}
}

func TestWrongStage(t *testing.T) {
	m := newTestMachine(newFakeSaver(), &fakeDownloader{payload: []byte("x")})
	ctx := context.Background()

	if _, err := m.SubmitName(7, "beta"); !errors.Is(err, ErrNoSession) {
		t.Errorf("SubmitName idle = %v, want ErrNoSession", err)
	}
	if _, err := m.SubmitVoice(ctx, 7, "h", Clip{}); !errors.Is(err, ErrNoSession) {
		t.Errorf("SubmitVoice idle = %v, want ErrNoSession", err)
	}

	m.Begin(7)
	if _, err := m.SubmitVoice(ctx, 7, "h", Clip{}); !errors.Is(err, ErrWrongStage) {
		t.Errorf("SubmitVoice in AwaitingName = %v, want ErrWrongStage", err)
	}

	if _, err := m.SubmitName(7, "beta"); err != nil {
		t.Fatalf("SubmitName: %v", err)
	}
	if _, err := m.SubmitName(7, "gamma"); !errors.Is(err, ErrWrongStage) {
		t.Errorf("SubmitName in AwaitingVoice = %v, want ErrWrongStage", err)
	}
}

func TestSaveFailureDestroysSession(t *testing.T) {
	saver := newFakeSaver()
	saver.err = errors.New("disk full")
	m := newTestMachine(saver, &fakeDownloader{payload: []byte("x")})

	m.Begin(7)
	if _, err := m.SubmitName(7, "beta"); err != nil {
		t.Fatalf("SubmitName: %v", err)
	}

	if _, err := m.SubmitVoice(context.Background(), 7, "h", Clip{FileID: "f", MediaID: "m"}); err == nil {
		t.Fatal("SubmitVoice succeeded despite storage failure")
	}
	if _, ok := m.StageOf(7); ok {
		t.Error("session dangling after storage failure")
	}
}

func TestPerUserIsolation(t *testing.T) {
	m := newTestMachine(newFakeSaver(), &fakeDownloader{})

	m.Begin(1)
	m.Begin(2)
	if _, err := m.SubmitName(1, "one"); err != nil {
		t.Fatalf("SubmitName(1): %v", err)
	}

	// User 2 is still picking a name; user 1's progress must not leak.
	if stage, _ := m.StageOf(2); stage != AwaitingName {
		t.Errorf("user 2 stage = %v, want AwaitingName", stage)
	}
	if had := m.Cancel(2); !had {
		t.Error("Cancel(2) reported no session")
	}
	if stage, _ := m.StageOf(1); stage != AwaitingVoice {
		t.Errorf("user 1 stage after cancelling user 2 = %v", stage)
	}
}
