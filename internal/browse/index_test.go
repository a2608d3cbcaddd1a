package browse

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/thinkwright/convo/internal/archive"
)

type fakeSource struct {
	convs []archive.Conversation
	err   error
	calls int
}

func (f *fakeSource) Conversations(ctx context.Context) ([]archive.Conversation, error) {
	f.calls++
	return f.convs, f.err
}

func conv(id, title, group string) archive.Conversation {
	return archive.Conversation{ID: id, Title: title, Group: group, Created: "2024-01-0" + id}
}

func TestLoad_DerivesGroupsInFirstSeenOrder(t *testing.T) {
	src := &fakeSource{convs: []archive.Conversation{
		conv("1", "a", "Work"),
		conv("2", "b", ""),
		conv("3", "c", "Home"),
		conv("4", "d", "Work"),
		conv("5", "e", "Travel"),
	}}

	x, err := Load(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if src.calls != 1 {
		t.Errorf("source called %d times, want 1", src.calls)
	}
	want := []string{"Work", "Home", "Travel"}
	if !reflect.DeepEqual(x.Groups(), want) {
		t.Errorf("groups = %v, want %v", x.Groups(), want)
	}
	if x.Len() != 5 {
		t.Errorf("len = %d, want 5", x.Len())
	}
}

func TestLoad_Failure(t *testing.T) {
	failure := &archive.RequestFailure{Op: "conversations", Kind: archive.KindNetwork, Err: errors.New("refused")}
	x, err := Load(context.Background(), &fakeSource{err: failure})
	if x != nil {
		t.Error("expected nil index on failure")
	}
	var rf *archive.RequestFailure
	if !errors.As(err, &rf) {
		t.Errorf("expected wrapped RequestFailure, got %v", err)
	}
}

func TestIndex_NilSafe(t *testing.T) {
	var x *Index
	if x.Len() != 0 || x.Groups() != nil || x.Conversations() != nil {
		t.Error("nil index should behave as empty")
	}
}
