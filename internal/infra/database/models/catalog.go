package models

import (
	"time"

	"gorm.io/datatypes"
)

type Collection struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text"`
	License     string    `json:"license" gorm:"type:text"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Item struct {
	ID            string         `json:"id" gorm:"primaryKey;type:text"`
	CollectionID  string         `json:"collectionID" gorm:"type:text;index"`
	Collection    Collection     `json:"-" gorm:"foreignKey:CollectionID;references:ID;constraint:OnDelete:CASCADE;"`
	Title         string         `json:"title" gorm:"type:text"`
	Description   string         `json:"description" gorm:"type:text"`
	Datetime      *time.Time     `json:"datetime" gorm:"type:timestamp with time zone;index"`
	StartDatetime *time.Time     `json:"startDatetime" gorm:"type:timestamp with time zone;index"`
	EndDatetime   *time.Time     `json:"endDatetime" gorm:"type:timestamp with time zone;index"`
	Temporal      datatypes.JSON `json:"temporal" gorm:"type:jsonb"`
	Geometry      datatypes.JSON `json:"geometry" gorm:"type:jsonb"`
	Properties    datatypes.JSON `json:"properties" gorm:"type:jsonb"`
	Links         datatypes.JSON `json:"links" gorm:"type:jsonb"`
	Assets        datatypes.JSON `json:"assets" gorm:"type:jsonb"`
	Extensions    datatypes.JSON `json:"extensions" gorm:"type:jsonb"`
	SpecVersion   string         `json:"specVersion" gorm:"type:text"`
	Keywords      []Keyword      `json:"keywords" gorm:"many2many:item_keywords;constraint:OnDelete:CASCADE;"`
	CDate         time.Time      `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate         time.Time      `json:"mdate" gorm:"autoUpdateTime"`
}

type Keyword struct {
	ID       string   `json:"id" gorm:"primaryKey;type:text"`
	Title    string   `json:"title" gorm:"type:text;uniqueIndex"`
	ParentID *string  `json:"parentID" gorm:"type:text;index"`
	Parent   *Keyword `json:"-" gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:SET NULL;"`
}
