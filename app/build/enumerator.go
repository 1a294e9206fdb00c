package build

import (
	"github.com/akarpov/pagegen/app/content"
)

// Enumerator produces the complete set of addressable ids for a build. It is
// a direct projection of the store's current id set: no filtering, no
// reordering.
type Enumerator struct {
	store content.Store
}

func NewEnumerator(store content.Store) *Enumerator {
	return &Enumerator{store: store}
}

func (e *Enumerator) Run() ([]content.PathDescriptor, error) {
	posts, err := e.store.ListAll()
	if err != nil {
		return nil, err
	}

	descriptors := make([]content.PathDescriptor, 0, len(posts))
	for _, post := range posts {
		descriptors = append(descriptors, content.PathDescriptor{ID: post.ID})
	}

	return descriptors, nil
}
