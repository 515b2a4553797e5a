package seeders

import (
	"errors"

	"p2h.app/configs/configslog"
	"p2h.app/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	categoryOutside = "Pemeriksaan Keliling Unit / Diluar Kabin"
	categoryCabin   = "Pemeriksaan Didalam Kabin"
	categoryEngine  = "Pemeriksaan Mesin"
)

var defaultInspectionItems = []models.InspectionItem{
	{Category: categoryOutside, Description: "Pemeriksaan keadaan ban & bolt roda", DangerCode: models.DangerCodeAA},
	{Category: categoryOutside, Description: "Pemeriksaan kelengkapan bolt part", DangerCode: models.DangerCodeA},
	{Category: categoryOutside, Description: "Pemeriksaan keadaan kelistrikan alat & kendaraan", DangerCode: models.DangerCodeA},
	{Category: categoryOutside, Description: "Pemeriksaan kelengkapan pelindung alat kendaraan", DangerCode: models.DangerCodeB},
	{Category: categoryOutside, Description: "Pemeriksaan kondisi lampu & reflektor", DangerCode: models.DangerCodeA},
	{Category: categoryCabin, Description: "Pemeriksaan kondisi seat belt", DangerCode: models.DangerCodeAA},
	{Category: categoryCabin, Description: "Pemeriksaan kondisi steering", DangerCode: models.DangerCodeAA},
	{Category: categoryCabin, Description: "Pemeriksaan kondisi rem", DangerCode: models.DangerCodeAA},
	{Category: categoryCabin, Description: "Pemeriksaan fungsi klakson & alarm mundur", DangerCode: models.DangerCodeA},
	{Category: categoryEngine, Description: "Pemeriksaan kondisi engine", DangerCode: models.DangerCodeAA},
	{Category: categoryEngine, Description: "Pemeriksaan kebocoran radiator", DangerCode: models.DangerCodeA},
	{Category: categoryEngine, Description: "Pemeriksaan kelengkapan v-belt", DangerCode: models.DangerCodeA},
}

// SeedInspectionItems installs the default checklist only when the table is
// empty, so edits made by administrators are never overwritten.
func SeedInspectionItems(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.InspectionItem{}).Count(&count).Error; err != nil {
		configslog.Log.Error("Inspection item count failed", zap.Error(err))
		return err
	}
	if count > 0 {
		configslog.SLog.Infof("Inspection items already present (%d), skipping.", count)
		return nil
	}

	items := make([]models.InspectionItem, len(defaultInspectionItems))
	for i, item := range defaultInspectionItems {
		item.OrderNumber = i + 1
		item.IsActive = true
		items[i] = item
	}
	if err := db.Create(&items).Error; err != nil {
		return errors.Join(errors.New("inspection items could not be seeded"), err)
	}
	configslog.SLog.Infof("%d inspection items seeded.", len(items))
	return nil
}
