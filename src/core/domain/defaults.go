package domain

// MaxNameLength bounds event and category names.
const MaxNameLength = 200

// MaxCovers is the maximum number of cover references per event.
const MaxCovers = 10

// MaxCoverLength bounds a single cover reference.
const MaxCoverLength = 200

// DefaultCategoryName is reported for events listed without a category.
const DefaultCategoryName = "default"

// Messages returned alongside the echoed request on create failures.
const (
	MsgNoCreationArguments = "no creation arguments"
	MsgEndBeforeStart      = "eventEnd must be after eventStart"
	MsgTooManyCovers       = "covers may contain at most 10 items"
	MsgInvalidCover        = "covers contains null or an item longer than 200 characters"
)
