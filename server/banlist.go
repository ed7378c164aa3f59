package server

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// BanList is the room's persistent address ban list. Addresses and usernames
// are parallel: entry i of one belongs to entry i of the other. Every
// mutation rewrites the backing file before returning, so the list survives
// restarts without a shutdown hook.
type BanList struct {
	mu        sync.Mutex
	path      string
	addresses []string
	usernames []string
}

type banFile struct {
	Addresses []string `json:"addresses"`
	Usernames []string `json:"usernames"`
}

// LoadBanList reads path if it exists; a missing file starts an empty list.
func LoadBanList(path string) (*BanList, error) {
	b := &BanList{
		path:      path,
		addresses: []string{},
		usernames: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, fmt.Errorf("read ban list: %w", err)
	}

	var f banFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ban list %s: %w", path, err)
	}
	if len(f.Addresses) != len(f.Usernames) {
		return nil, fmt.Errorf("ban list %s: %d addresses but %d usernames", path, len(f.Addresses), len(f.Usernames))
	}
	b.addresses = append(b.addresses, f.Addresses...)
	b.usernames = append(b.usernames, f.Usernames...)
	return b, nil
}

// IsBanned reports whether addr is on the list.
func (b *BanList) IsBanned(addr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.addresses {
		if a == addr {
			return true
		}
	}
	return false
}

// Add appends one address/username pair and persists.
func (b *BanList) Add(addr, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addresses = append(b.addresses, addr)
	b.usernames = append(b.usernames, name)
	return b.save()
}

// Remove deletes the first entry whose username matches and persists. It
// reports whether anything was removed.
func (b *BanList) Remove(name string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, n := range b.usernames {
		if n == name {
			b.addresses = append(b.addresses[:i], b.addresses[i+1:]...)
			b.usernames = append(b.usernames[:i], b.usernames[i+1:]...)
			return true, b.save()
		}
	}
	return false, nil
}

// Len returns the number of entries.
func (b *BanList) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.addresses)
}

func (b *BanList) save() error {
	data, err := json.MarshalIndent(banFile{Addresses: b.addresses, Usernames: b.usernames}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ban list: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write ban list: %w", err)
	}
	return nil
}
