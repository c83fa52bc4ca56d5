// Package models contains GORM persistence models that map to database tables.
// They stay separate from domain entities so the domain layer carries no ORM tags.
//
// Each model has ToDomain and FromDomain mappers; repositories only read and
// write models. Tables:
//   - inventory_items, inventory_transactions (inventory.go)
//   - locations (location.go)
//   - suppliers (partner.go)
package models
