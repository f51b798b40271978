package repository

// Store agrupa todos los repositorios del Identity Store.
type Store interface {
	Users() UserRepository
	Catalog() CatalogRepository
	Grants() GrantRepository
	GrantReader() GrantReader
	Tokens() TokenRepository
	Close()
}
