package database

// PageRepository persists rendered pages and build failures.
type PageRepository interface {
	UpsertPage(page Page) error
	GetPage(id string) (*Page, error)
	GetPageCount() (int, error)
	DeletePagesNotIn(ids []string) error

	ReplaceFailures(failures map[string]string) error
	GetFailures() ([]BuildFailure, error)
	GetFailureCount() (int, error)
}
