package badger

import "github.com/masterhudini/ainews/storage"

// NewMemoryRepositories creates an in-memory article repository and dedup
// index for testing. Returns articleRepo, dedupIndex, backend, and error.
// Caller must close both repositories and the backend when done.
func NewMemoryRepositories() (storage.ArticleRepository, storage.DedupIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	articleRepo, err := NewArticleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	dedupIndex, err := NewDedupIndex(backend)
	if err != nil {
		articleRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return articleRepo, dedupIndex, backend, nil
}
