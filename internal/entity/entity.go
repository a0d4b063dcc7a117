package entity

// Entity is anything addressable by a document slug in the search mirror.
type Entity interface {
	Slug() string
}
