package repository

import (
	"errors"
	"fmt"

	"github.com/modu-ai/rulesync/pkg/models"
)

// ErrRepositoryNotFound indicates the url is not in the configured list.
var ErrRepositoryNotFound = errors.New("repository: not found")

// Registry operations work on a copy of the configured list and return the
// new list. Callers persist the result through the configuration store,
// which replaces the stored list as a whole.

// Upsert replaces the descriptor with the same URL, or appends d when the
// URL is new. The position of an existing entry is preserved.
func Upsert(list []models.RepositoryDescriptor, d models.RepositoryDescriptor) []models.RepositoryDescriptor {
	out := copyList(list)
	if i := indexOf(out, d.URL); i >= 0 {
		out[i] = d
		return out
	}
	return append(out, d)
}

// Remove drops the descriptor for url. The working copy on disk is kept.
func Remove(list []models.RepositoryDescriptor, url string) ([]models.RepositoryDescriptor, error) {
	i := indexOf(list, url)
	if i < 0 {
		return nil, notFound(url)
	}
	out := make([]models.RepositoryDescriptor, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}

// SetEnabled toggles the enabled flag of the descriptor for url.
func SetEnabled(list []models.RepositoryDescriptor, url string, enabled bool) ([]models.RepositoryDescriptor, error) {
	i := indexOf(list, url)
	if i < 0 {
		return nil, notFound(url)
	}
	out := copyList(list)
	out[i].Enabled = enabled
	return out, nil
}

// Find returns the descriptor for url.
func Find(list []models.RepositoryDescriptor, url string) (models.RepositoryDescriptor, error) {
	i := indexOf(list, url)
	if i < 0 {
		return models.RepositoryDescriptor{}, notFound(url)
	}
	return list[i], nil
}

// Enabled returns the enabled descriptors in list order.
func Enabled(list []models.RepositoryDescriptor) []models.RepositoryDescriptor {
	var out []models.RepositoryDescriptor
	for _, d := range list {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

func indexOf(list []models.RepositoryDescriptor, url string) int {
	for i, d := range list {
		if d.URL == url {
			return i
		}
	}
	return -1
}

func copyList(list []models.RepositoryDescriptor) []models.RepositoryDescriptor {
	out := make([]models.RepositoryDescriptor, len(list))
	copy(out, list)
	return out
}

func notFound(url string) error {
	return fmt.Errorf("%w: %s", ErrRepositoryNotFound, url)
}
