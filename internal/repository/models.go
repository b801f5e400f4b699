package repository

import (
	"time"

	"github.com/diana-hep/femtocode/pkg/model"
)

// DatasetRecord represents the datasets table.
type DatasetRecord struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string         `gorm:"column:name;type:varchar(128);uniqueIndex"`
	NumEntries int64          `gorm:"column:num_entries"`
	Columns    []ColumnRecord `gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE"`
	CreateTime time.Time      `gorm:"column:create_time;autoCreateTime"`
}

// TableName returns the table name for DatasetRecord.
func (DatasetRecord) TableName() string {
	return "datasets"
}

// ColumnRecord represents the dataset_columns table.
type ColumnRecord struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	DatasetID  int64  `gorm:"column:dataset_id;index"`
	Name       string `gorm:"column:name;type:varchar(256)"`
	Role       int    `gorm:"column:role"`
	Kind       int    `gorm:"column:kind"`
	ItemBytes  int    `gorm:"column:item_bytes"`
	SizeColumn string `gorm:"column:size_column;type:varchar(256)"`
	Items      int64  `gorm:"column:items"`
}

// TableName returns the table name for ColumnRecord.
func (ColumnRecord) TableName() string {
	return "dataset_columns"
}

// ToModel converts a DatasetRecord and its columns to a model.Dataset.
func (d *DatasetRecord) ToModel() *model.Dataset {
	ds := &model.Dataset{
		Name:       d.Name,
		NumEntries: d.NumEntries,
		Columns:    make([]model.Column, len(d.Columns)),
	}
	for i, c := range d.Columns {
		ds.Columns[i] = model.Column{
			Name:       c.Name,
			Role:       model.ColumnRole(c.Role),
			Kind:       model.ItemKind(c.Kind),
			ItemBytes:  c.ItemBytes,
			SizeColumn: c.SizeColumn,
			Items:      c.Items,
		}
	}
	return ds
}

// recordFromModel converts a model.Dataset to its catalog records.
func recordFromModel(ds *model.Dataset) *DatasetRecord {
	rec := &DatasetRecord{
		Name:       ds.Name,
		NumEntries: ds.NumEntries,
		Columns:    make([]ColumnRecord, len(ds.Columns)),
	}
	for i, c := range ds.Columns {
		rec.Columns[i] = ColumnRecord{
			Name:       c.Name,
			Role:       int(c.Role),
			Kind:       int(c.Kind),
			ItemBytes:  c.ItemBytes,
			SizeColumn: c.SizeColumn,
			Items:      c.Items,
		}
	}
	return rec
}
