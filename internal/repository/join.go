package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// joinTable describes a many2many link table between an owner and its members.
type joinTable struct {
	name      string
	ownerCol  string
	memberCol string
}

var (
	recipeTagsTable = joinTable{name: "recipe_tags", ownerCol: "recipe_id", memberCol: "tag_id"}
	bookRecipeTable = joinTable{name: "recipe_book_recipes", ownerCol: "recipe_book_id", memberCol: "recipe_id"}
)

// replace makes memberIDs the complete membership of ownerID. tx should be a
// transaction.
func (j joinTable) replace(tx *gorm.DB, ownerID uint, memberIDs []uint) error {
	if err := j.clearOwner(tx, ownerID); err != nil {
		return err
	}
	return j.add(tx, ownerID, memberIDs)
}

func (j joinTable) add(tx *gorm.DB, ownerID uint, memberIDs []uint) error {
	memberIDs = uniqueIDs(memberIDs)
	if len(memberIDs) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(memberIDs))
	for _, id := range memberIDs {
		rows = append(rows, map[string]interface{}{j.ownerCol: ownerID, j.memberCol: id})
	}
	if err := tx.Table(j.name).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert %s: %w", j.name, err)
	}
	return nil
}

func (j joinTable) remove(tx *gorm.DB, ownerID, memberID uint) (int64, error) {
	res := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", j.name, j.ownerCol, j.memberCol), ownerID, memberID)
	return res.RowsAffected, res.Error
}

func (j joinTable) clearOwner(tx *gorm.DB, ownerID uint) error {
	if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", j.name, j.ownerCol), ownerID).Error; err != nil {
		return fmt.Errorf("clear %s: %w", j.name, err)
	}
	return nil
}

func (j joinTable) clearMember(tx *gorm.DB, memberID uint) error {
	if err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", j.name, j.memberCol), memberID).Error; err != nil {
		return fmt.Errorf("clear %s: %w", j.name, err)
	}
	return nil
}

func (j joinTable) ownersOf(tx *gorm.DB, memberID uint) ([]uint, error) {
	var ids []uint
	err := tx.Table(j.name).Where(j.memberCol+" = ?", memberID).Pluck(j.ownerCol, &ids).Error
	return ids, err
}
