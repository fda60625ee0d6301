package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/electr1fy0/bluenote/crypto"
	"github.com/electr1fy0/bluenote/notes"
)

// Vault is a Notebook persisted to a single file after every mutation.
// With a passphrase the file holds a sealed crypto.Envelope, otherwise
// the notebook JSON itself.
type Vault struct {
	*Notebook

	path       string
	passphrase string
	mu         sync.Mutex
}

var _ notes.Repository = (*Vault)(nil)

// OpenVault loads path, or starts an empty notebook when the file does not exist yet.
func OpenVault(path, passphrase string) (*Vault, error) {
	v := &Vault{path: path, passphrase: passphrase}

	exists, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		v.Notebook = NewNotebook()
		return v, v.save()
	}

	nb, err := v.load()
	if err != nil {
		return nil, fmt.Errorf("open vault %s: %w", path, err)
	}
	v.Notebook = nb
	return v, nil
}

func (v *Vault) Path() string { return v.path }

// Create, Update and Delete hold mu across the change and the write, and
// undo the in-memory change when the write fails.

func (v *Vault) Create(ctx context.Context, title, content string) (notes.Note, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n, err := v.Notebook.Create(ctx, title, content)
	if err != nil {
		return notes.Note{}, err
	}
	if err := v.save(); err != nil {
		v.Notebook.restore(n.ID, nil)
		return notes.Note{}, err
	}
	return n, nil
}

func (v *Vault) Update(ctx context.Context, id, title, content string) (notes.Note, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev, err := v.Notebook.Get(ctx, id)
	if err != nil {
		return notes.Note{}, err
	}
	n, err := v.Notebook.Update(ctx, id, title, content)
	if err != nil {
		return notes.Note{}, err
	}
	if err := v.save(); err != nil {
		v.Notebook.restore(id, &prev)
		return notes.Note{}, err
	}
	return n, nil
}

func (v *Vault) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev, err := v.Notebook.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := v.Notebook.Delete(ctx, id); err != nil {
		return err
	}
	if err := v.save(); err != nil {
		v.Notebook.restore(id, &prev)
		return err
	}
	return nil
}

// save writes the notebook; callers other than OpenVault hold mu.
func (v *Vault) save() error {
	data, err := v.Notebook.ToJSON()
	if err != nil {
		return err
	}
	if v.passphrase != "" {
		env, err := crypto.Seal(data, v.passphrase)
		if err != nil {
			return err
		}
		if data, err = json.Marshal(env); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return err
	}
	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, v.path)
}

func (v *Vault) load() (*Notebook, error) {
	data, err := os.ReadFile(v.path)
	if err != nil {
		return nil, err
	}
	if v.passphrase != "" {
		var env crypto.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, err
		}
		if data, err = crypto.Open(env, v.passphrase); err != nil {
			return nil, err
		}
	}
	return FromJSON(data)
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
