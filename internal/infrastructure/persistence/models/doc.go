// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Each model offers ToDomain and a XModelFromDomain constructor; repositories in the
// parent package only ever read and write these types.
//
// Structure:
// - base.go: BaseModel and AggregateModel (optimistic lock version)
// - member.go: members and their membership licenses
// - reference.go: taxonomy terms and firms mirrored from AM.net
// - sync.go: legislative contacts and the sync audit trail
package models
