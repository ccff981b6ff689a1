package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Aarondoran/TerminalTasks/internal/model"
	"github.com/Aarondoran/TerminalTasks/internal/store/memstore"
)

var fixedNow = time.Date(2024, time.July, 3, 10, 30, 0, 0, time.Local)

func setupStore(t *testing.T, seed []model.Task) (*Store, *memstore.Store) {
	t.Helper()
	var mem *memstore.Store
	if seed == nil {
		mem = memstore.New()
	} else {
		mem = memstore.Seed(seed)
	}
	s := New(mem, WithClock(func() time.Time { return fixedNow }))
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s, mem
}

func sampleTasks() []model.Task {
	return []model.Task{
		{Description: "buy milk", Date: "1/7/2024"},
		{Description: "walk dog", Done: true, Date: "2/7/2024"},
		{Description: "file taxes", Date: "3/7/2024"},
	}
}

func TestLoad_AbsentStorageIsEmpty(t *testing.T) {
	s, _ := setupStore(t, nil)

	if s.Len() != 0 {
		t.Errorf("expected empty list, got %d tasks", s.Len())
	}
	if got := s.List(); len(got) != 0 {
		t.Errorf("expected no entries, got %v", got)
	}
}

func TestLoad_ReadErrorPropagates(t *testing.T) {
	mem := memstore.Seed(sampleTasks())
	mem.LoadErr = errors.New("json unmarshal: unexpected end of JSON input")
	s := New(mem)

	_, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrStorageRead) {
		t.Errorf("expected ErrStorageRead, got %v", err)
	}
	var re *ReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected *ReadError, got %T", err)
	}
	if re.Backend != "memory" {
		t.Errorf("expected backend memory, got %q", re.Backend)
	}
	if s.Len() != 0 {
		t.Errorf("expected list untouched, got %d tasks", s.Len())
	}
}

func TestLoad_NoCaching(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())

	if err := mem.Save(context.Background(), sampleTasks()[:1]); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	tasks, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("expected reload to see 1 task, got %d", len(tasks))
	}
}

func TestSave_RoundTrip(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !reflect.DeepEqual(mem.Snapshot(), sampleTasks()) {
		t.Errorf("expected storage unchanged, got %+v", mem.Snapshot())
	}
}

func TestAddTask_AppendsAndSaves(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())
	ctx := context.Background()

	task, err := s.AddTask(ctx, "call mum")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	want := model.Task{Description: "call mum", Done: false, Date: "3/7/2024"}
	if task != want {
		t.Errorf("expected %+v, got %+v", want, task)
	}
	got := s.Tasks()
	if len(got) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(got))
	}
	if !reflect.DeepEqual(got[:3], sampleTasks()) {
		t.Errorf("existing tasks changed: %+v", got[:3])
	}
	if got[3] != want {
		t.Errorf("expected appended task %+v, got %+v", want, got[3])
	}
	if mem.Saves != 1 {
		t.Errorf("expected 1 save, got %d", mem.Saves)
	}
	if !reflect.DeepEqual(mem.Snapshot(), got) {
		t.Errorf("storage and memory differ: %+v vs %+v", mem.Snapshot(), got)
	}
}

func TestAddTask_RejectsBlank(t *testing.T) {
	s, mem := setupStore(t, nil)

	_, err := s.AddTask(context.Background(), "  ")
	if !errors.Is(err, model.ErrEmptyDescription) {
		t.Errorf("expected ErrEmptyDescription, got %v", err)
	}
	if mem.Saves != 0 {
		t.Errorf("expected no save, got %d", mem.Saves)
	}
}

func TestAddTask_WriteErrorRollsBack(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())
	mem.SaveErr = errors.New("disk full")

	_, err := s.AddTask(context.Background(), "call mum")
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite, got %v", err)
	}
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected *WriteError, got %T", err)
	}
	if s.Len() != 3 {
		t.Errorf("expected in-memory list rolled back to 3, got %d", s.Len())
	}
}

func TestMarkDone_IndexInvariant(t *testing.T) {
	for i := range sampleTasks() {
		s, mem := setupStore(t, sampleTasks())

		ok, err := s.MarkDone(context.Background(), i)
		if err != nil {
			t.Fatalf("MarkDone(%d) failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("MarkDone(%d): expected ok", i)
		}
		got := s.Tasks()
		for j, task := range got {
			want := sampleTasks()[j]
			if j == i {
				want.Done = true
			}
			if task != want {
				t.Errorf("MarkDone(%d): task %d got %+v, want %+v", i, j, task, want)
			}
		}
		if mem.Saves != 1 {
			t.Errorf("MarkDone(%d): expected 1 save, got %d", i, mem.Saves)
		}
	}
}

func TestMarkDone_OutOfRange(t *testing.T) {
	for _, i := range []int{-1, 3, 5, 100} {
		s, mem := setupStore(t, sampleTasks())

		ok, err := s.MarkDone(context.Background(), i)
		if err != nil {
			t.Errorf("MarkDone(%d): unexpected error: %v", i, err)
		}
		if ok {
			t.Errorf("MarkDone(%d): expected invalid index", i)
		}
		if !reflect.DeepEqual(s.Tasks(), sampleTasks()) {
			t.Errorf("MarkDone(%d): list changed", i)
		}
		if mem.Saves != 0 {
			t.Errorf("MarkDone(%d): expected no save, got %d", i, mem.Saves)
		}
	}
}

func TestMarkDone_KeepsCreationDate(t *testing.T) {
	s, _ := setupStore(t, sampleTasks())

	if _, err := s.MarkDone(context.Background(), 0); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if got := s.Tasks()[0].Date; got != "1/7/2024" {
		t.Errorf("expected date to stay 1/7/2024, got %q", got)
	}
}

func TestMarkDone_WriteErrorRollsBack(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())
	mem.SaveErr = errors.New("permission denied")

	ok, err := s.MarkDone(context.Background(), 0)
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite, got %v", err)
	}
	if ok {
		t.Error("expected ok to be false on write failure")
	}
	if s.Tasks()[0].Done {
		t.Error("expected done flag rolled back")
	}
}

func TestClearAll_Idempotent(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.ClearAll(ctx); err != nil {
			t.Fatalf("ClearAll #%d failed: %v", i+1, err)
		}
		if s.Len() != 0 {
			t.Errorf("ClearAll #%d: expected empty list, got %d", i+1, s.Len())
		}
		if len(mem.Snapshot()) != 0 {
			t.Errorf("ClearAll #%d: expected empty storage", i+1)
		}
	}
	if mem.Saves != 2 {
		t.Errorf("expected 2 saves, got %d", mem.Saves)
	}
}

func TestClearAll_WriteErrorKeepsList(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())
	mem.SaveErr = errors.New("read-only file system")

	if err := s.ClearAll(context.Background()); !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite, got %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 tasks kept, got %d", s.Len())
	}
}

func TestList_Indices(t *testing.T) {
	s, _ := setupStore(t, sampleTasks())

	entries := s.List()
	for i, e := range entries {
		if e.Index != i+1 {
			t.Errorf("entry %d: expected index %d, got %d", i, i+1, e.Index)
		}
	}
	if !reflect.DeepEqual(s.ListDone(), entries) {
		t.Error("expected ListDone to return the same entries")
	}
}

func TestStats(t *testing.T) {
	s, _ := setupStore(t, sampleTasks())

	done, pending := s.Stats()
	if done != 1 || pending != 2 {
		t.Errorf("expected 1 done 2 pending, got %d done %d pending", done, pending)
	}
}

func TestApply_SavesOnce(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())

	err := s.Apply(context.Background(), []string{"call mum", "pay rent"}, []int{0, 4})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if mem.Saves != 1 {
		t.Errorf("expected 1 save, got %d", mem.Saves)
	}
	got := mem.Snapshot()
	if len(got) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(got))
	}
	if !got[0].Done || got[2].Done || got[3].Done {
		t.Errorf("unexpected done flags: %+v", got)
	}
	want := model.Task{Description: "pay rent", Done: true, Date: "3/7/2024"}
	if got[4] != want {
		t.Errorf("expected %+v, got %+v", want, got[4])
	}
}

func TestApply_WriteErrorLeavesStorageUnchanged(t *testing.T) {
	s, mem := setupStore(t, sampleTasks())
	mem.SaveErr = errors.New("disk full")

	err := s.Apply(context.Background(), []string{"two", "three"}, []int{0})
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite, got %v", err)
	}
	if !reflect.DeepEqual(mem.Snapshot(), sampleTasks()) {
		t.Errorf("expected storage unchanged, got %+v", mem.Snapshot())
	}
	if !reflect.DeepEqual(s.Tasks(), sampleTasks()) {
		t.Errorf("expected in-memory list unchanged, got %+v", s.Tasks())
	}
}

func TestApply_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		added  []string
		marked []int
	}{
		{"blank task", []string{"ok", " "}, nil},
		{"index out of range", []string{"ok"}, []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mem := setupStore(t, sampleTasks())
			if err := s.Apply(context.Background(), tt.added, tt.marked); err == nil {
				t.Fatal("expected error but got none")
			}
			if mem.Saves != 0 {
				t.Errorf("expected no save, got %d", mem.Saves)
			}
			if s.Len() != 3 {
				t.Errorf("expected 3 tasks, got %d", s.Len())
			}
		})
	}
}
