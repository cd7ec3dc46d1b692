package entities

// Recipe is the root aggregate a user creates by uploading a document.
// Menus are appended incrementally while the AI stream is being relayed,
// so the recipe row exists before any of its menus.
type Recipe struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Title  string `gorm:"not null" json:"title"`

	User  *User   `gorm:"foreignKey:UserID" json:"-"`
	Menus []*Menu `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"menus,omitempty"`
	Timestamp
}

// Menu order is implicit in creation order; list fetches sort by id asc.
type Menu struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	RecipeID uint   `gorm:"index;not null" json:"recipe_id"`
	Name     string `gorm:"not null" json:"name"`

	Recipe      *Recipe       `gorm:"foreignKey:RecipeID" json:"-"`
	Ingredients []*Ingredient `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	Timestamp
}

type Ingredient struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	MenuID uint   `gorm:"not null;uniqueIndex:idx_menu_ingredient" json:"menu_id"`
	Name   string `gorm:"not null;uniqueIndex:idx_menu_ingredient" json:"name"`

	Menu *Menu `gorm:"foreignKey:MenuID" json:"-"`
}
