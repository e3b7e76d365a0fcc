package models

import (
	"time"
)

// Property represents one canonical row of the property point view.
// Keyed by the upstream object identifier; re-imports of the same identifier
// update the row in place. All nullable fields use pointers to distinguish
// between zero values and NULL.
type Property struct {
	CreatedAt          time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"column:updated_at" json:"updatedAt"`
	X                  *float64   `gorm:"column:x" json:"x,omitempty"`
	Y                  *float64   `gorm:"column:y" json:"y,omitempty"`
	Folio              *string    `gorm:"index;column:folio" json:"folio,omitempty"`
	TTRRSS             *string    `gorm:"column:ttrrss" json:"ttrrss,omitempty"`
	XCoord             *float64   `gorm:"column:x_coord" json:"xCoord,omitempty"`
	YCoord             *float64   `gorm:"column:y_coord" json:"yCoord,omitempty"`
	SiteAddress        *string    `gorm:"column:true_site_addr" json:"siteAddress,omitempty"`
	SiteUnit           *string    `gorm:"column:true_site_unit" json:"siteUnit,omitempty"`
	SiteCity           *string    `gorm:"column:true_site_city" json:"siteCity,omitempty"`
	SiteZipCode        *string    `gorm:"column:true_site_zip_code" json:"siteZipCode,omitempty"`
	MailingAddr1       *string    `gorm:"column:true_mailing_addr1" json:"mailingAddr1,omitempty"`
	MailingAddr2       *string    `gorm:"column:true_mailing_addr2" json:"mailingAddr2,omitempty"`
	MailingAddr3       *string    `gorm:"column:true_mailing_addr3" json:"mailingAddr3,omitempty"`
	MailingCity        *string    `gorm:"column:true_mailing_city" json:"mailingCity,omitempty"`
	MailingState       *string    `gorm:"column:true_mailing_state" json:"mailingState,omitempty"`
	MailingZipCode     *string    `gorm:"column:true_mailing_zip_code" json:"mailingZipCode,omitempty"`
	MailingCountry     *string    `gorm:"column:true_mailing_country" json:"mailingCountry,omitempty"`
	Owner1             *string    `gorm:"column:true_owner1" json:"owner1,omitempty"`
	Owner2             *string    `gorm:"column:true_owner2" json:"owner2,omitempty"`
	Owner3             *string    `gorm:"column:true_owner3" json:"owner3,omitempty"`
	CondoFlag          *bool      `gorm:"column:condo_flag" json:"condoFlag,omitempty"`
	ParentFolio        *string    `gorm:"index;column:parent_folio" json:"parentFolio,omitempty"`
	DorCodeCur         *string    `gorm:"column:dor_code_cur" json:"dorCodeCur,omitempty"`
	DorDesc            *string    `gorm:"column:dor_desc" json:"dorDesc,omitempty"`
	Subdivision        *string    `gorm:"column:subdivision" json:"subdivision,omitempty"`
	BedroomCount       *float64   `gorm:"column:bedroom_count" json:"bedroomCount,omitempty"`
	BathroomCount      *float64   `gorm:"column:bathroom_count" json:"bathroomCount,omitempty"`
	HalfBathroomCount  *float64   `gorm:"column:half_bathroom_count" json:"halfBathroomCount,omitempty"`
	FloorCount         *float64   `gorm:"column:floor_count" json:"floorCount,omitempty"`
	UnitCount          *float64   `gorm:"column:unit_count" json:"unitCount,omitempty"`
	BuildingActualArea *float64   `gorm:"column:building_actual_area" json:"buildingActualArea,omitempty"`
	BuildingHeatedArea *float64   `gorm:"column:building_heated_area" json:"buildingHeatedArea,omitempty"`
	LotSize            *float64   `gorm:"column:lot_size" json:"lotSize,omitempty"`
	YearBuilt          *int       `gorm:"column:year_built" json:"yearBuilt,omitempty"`
	AssessmentYearCur  *int       `gorm:"column:assessment_year_cur" json:"assessmentYearCur,omitempty"`
	AssessedValCur     *float64   `gorm:"column:assessed_val_cur" json:"assessedValCur,omitempty"`
	DOS1               *time.Time `gorm:"column:dos_1" json:"dos1,omitempty"`
	Price1             *float64   `gorm:"column:price_1" json:"price1,omitempty"`
	Legal              *string    `gorm:"type:text;column:legal" json:"legal,omitempty"`
	PID                *int64     `gorm:"column:pid" json:"pid,omitempty"`
	DateOfSaleUTC      *time.Time `gorm:"column:dateofsale_utc" json:"dateOfSaleUtc,omitempty"`
	SearchAll          *string    `gorm:"type:text;column:search_all" json:"-"`
	IsParentFolio      *bool      `gorm:"index;column:is_parent_folio" json:"isParentFolio,omitempty"`
	GeomRaw            *Point     `gorm:"type:geometry(Point,2236);column:geom_raw" json:"-"`
	Geom               *Point     `gorm:"type:geometry(Point,4326);column:geom" json:"geometry,omitempty"`
	ObjectID           int64      `gorm:"primaryKey;column:objectid" json:"objectId"`
}

// TableName specifies the schema-qualified table name for GORM.
func (Property) TableName() string {
	return "neurastate.property_point_view"
}

// PropertyMeta carries derived per-parent metadata. One row per property
// flagged as a parent folio, upserted by the maintenance jobs.
type PropertyMeta struct {
	ObjectID      int64   `gorm:"primaryKey;column:object_id" json:"objectId"`
	Folio         *string `gorm:"column:folio" json:"folio,omitempty"`
	ChildrenCount int     `gorm:"not null;default:0;column:children_count" json:"childrenCount"`
}

// TableName specifies the schema-qualified table name for GORM.
func (PropertyMeta) TableName() string {
	return "neurastate.property_meta"
}

// Settings holds externally managed configuration. The import pipeline only
// ever reads the first record.
type Settings struct {
	ID                    int       `gorm:"primaryKey;column:id" json:"id"`
	DatasetPointOfViewURL *string   `gorm:"column:dataset_point_of_view_url" json:"datasetPointOfViewUrl,omitempty"`
	CreatedAt             time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt             time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the schema-qualified table name for GORM.
func (Settings) TableName() string {
	return "neurastate.settings"
}
