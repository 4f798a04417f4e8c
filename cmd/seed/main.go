package main

import (
	"github.com/rajabpour4097/faydo/internal/config"
	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 省份与城市
	provinces := map[string][]string{
		"تهران":          {"تهران", "شهریار", "اسلامشهر"},
		"اصفهان":         {"اصفهان", "کاشان", "نجف‌آباد"},
		"فارس":           {"شیراز", "مرودشت"},
		"خراسان رضوی":    {"مشهد", "نیشابور"},
		"آذربایجان شرقی": {"تبریز", "مراغه"},
	}
	for provinceName, cityNames := range provinces {
		province := models.Province{Name: provinceName}
		if err := models.DB.Where("name = ?", provinceName).FirstOrCreate(&province).Error; err != nil {
			stdLog.Fatalf("Failed to seed province %s: %v", provinceName, err)
		}
		for _, cityName := range cityNames {
			city := models.City{ProvinceID: province.ID, Name: cityName}
			if err := models.DB.Where("province_id = ? AND name = ?", province.ID, cityName).
				FirstOrCreate(&city).Error; err != nil {
				stdLog.Fatalf("Failed to seed city %s: %v", cityName, err)
			}
		}
	}

	// 服务分类
	serviceCategories := []models.ServiceCategory{
		{Name: "رستوران", Description: "رستوران و غذای بیرون‌بر", SortOrder: 1},
		{Name: "کافه", Description: "کافه و قهوه‌خانه", SortOrder: 2},
		{Name: "زیبایی و سلامت", Description: "آرایشگاه، سالن زیبایی و خدمات سلامت", SortOrder: 3},
		{Name: "ورزش و تفریح", Description: "باشگاه ورزشی و مراکز تفریحی", SortOrder: 4},
		{Name: "پوشاک", Description: "فروشگاه پوشاک و اکسسوری", SortOrder: 5},
	}
	for i := range serviceCategories {
		if err := models.DB.Where("name = ?", serviceCategories[i].Name).
			FirstOrCreate(&serviceCategories[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed service category %s: %v", serviceCategories[i].Name, err)
		}
	}

	// VIP 体验类目
	vipCategories := []models.VipExperienceCategory{
		{Name: "میز رزرو اختصاصی", Description: "رزرو میز بدون نوبت", VipType: constants.VipTypeVip},
		{Name: "نوشیدنی خوش‌آمدگویی", Description: "نوشیدنی رایگان هنگام ورود", VipType: constants.VipTypeVip},
		{Name: "دسر رایگان", Description: "یک دسر انتخابی مهمان ما", VipType: constants.VipTypeVip},
		{Name: "منوی مخصوص", Description: "دسترسی به منوی ویژه", VipType: constants.VipTypePlus},
		{Name: "پارکینگ اختصاصی", Description: "جای پارک رزروشده", VipType: constants.VipTypePlus},
		{Name: "دعوت به رویدادها", Description: "دعوت‌نامه رویدادهای ویژه", VipType: constants.VipTypePlus},
	}
	for i := range vipCategories {
		if err := models.DB.Where("name = ? AND vip_type = ?", vipCategories[i].Name, vipCategories[i].VipType).
			FirstOrCreate(&vipCategories[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed vip category %s: %v", vipCategories[i].Name, err)
		}
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Fatalf("Failed to seed default admin: %v", err)
	}

	stdLog.Println("Seed data created successfully!")
}
