// Package models contains GORM persistence models for aggregates whose domain
// types stay free of ORM tags. Identity is mapped this way so password hashes
// and lock state never leak through a domain struct tag.
//
// Most other aggregates carry their own gorm tags and are persisted directly.
package models
