package models

// All lists every persisted model. SQLite deployments AutoMigrate these.
func All() []any {
	return []any{&User{}, &Media{}, &Comment{}, &Rating{}}
}
