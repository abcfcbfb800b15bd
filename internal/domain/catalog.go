package domain

// CatalogStatus is the lifecycle state of the loaded dataset.
type CatalogStatus string

const (
	CatalogLoading CatalogStatus = "loading"
	CatalogReady   CatalogStatus = "ready"
	CatalogFailed  CatalogStatus = "failed"
)
