package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/blogbox/journal"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireDir creates a temporary directory that is removed by cleanup
func AcquireDir(t TestLog, name string) (string, func()) {
	dir, err := os.MkdirTemp("", "blogbox-tests-"+name)
	if err != nil {
		t.Fatal(err)
	}
	return dir, func() {
		err := os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquireJournal opens an empty journal on a temporary directory, loader
// (if not nil) is called to populate it.
func AcquireJournal(ctx context.Context, t TestLog, name string, loader func(context.Context, *journal.Store) error) (*journal.Store, func()) {
	dir, cleanupDir := AcquireDir(t, name)
	store, err := journal.Open(ctx, filepath.Join(dir, name, "blogbox.db"))
	if err != nil {
		cleanupDir()
		t.Fatal(err)
	}
	if loader != nil {
		err = loader(ctx, store)
		if err != nil {
			store.Close()
			cleanupDir()
			t.Fatal(err)
		}
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close journal", err)
		}
		cleanupDir()
	}
}
