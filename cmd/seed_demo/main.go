// Seeds the staging table with plausible sales so the dashboard has something
// to show on a fresh install. Run the transfer from the OLTP page afterwards.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/vantadata/salesdwgo/internal/config"
	"github.com/vantadata/salesdwgo/internal/database"
	"github.com/vantadata/salesdwgo/internal/models"
)

// Vocabularies matching the dashboard's dropdowns
var (
	regions = map[string][]string{
		"North":  {"Kyiv", "Kharkiv"},
		"West":   {"Lviv", "Ivano-Frankivsk", "Ternopil"},
		"South":  {"Odesa", "Zaporizhzhia"},
		"East":   {"Dnipro"},
		"Center": {"Vinnytsia", "Poltava"},
	}
	brands = []string{
		"Acer", "Apple", "Asus", "Bosch", "Canon", "Dell", "HP", "Lenovo",
		"LG", "Philips", "Samsung", "Sony", "Xiaomi",
	}
	categories = []string{
		"Accessories", "Cameras", "Gaming", "Headphones", "Home Appliances",
		"Laptops", "Monitors", "Smartphones", "Smartwatches", "Storage", "TV",
	}
	suppliers = map[string]string{
		"TechTrade LLC":    "Ukraine",
		"EuroParts GmbH":   "Germany",
		"Shenzhen Direct":  "China",
		"Nord Electronics": "Sweden",
		"Vistula Import":   "Poland",
	}
	paymentTypes  = []string{"Cash", "Card", "Online", "Installments"}
	salesChannels = []string{"Website", "Store", "Mobile App", "Marketplace"}
)

func main() {
	count := flag.Int("count", 200, "number of staging records to create")
	seed := flag.Uint64("seed", 0, "gofakeit seed (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	faker := gofakeit.New(*seed)

	managers := make([]string, 8)
	for i := range managers {
		managers[i] = faker.FirstName() + " " + faker.LastName()
	}
	supplierNames := make([]string, 0, len(suppliers))
	for name := range suppliers {
		supplierNames = append(supplierNames, name)
	}
	regionNames := make([]string, 0, len(regions))
	for name := range regions {
		regionNames = append(regionNames, name)
	}

	var baseSaleID int64
	db.Raw("SELECT COALESCE(MAX(sale_id), 1000) FROM oltp_sales").Scan(&baseSaleID)

	inserted := 0
	for i := 0; i < *count; i++ {
		region := regionNames[faker.Number(0, len(regionNames)-1)]
		city := regions[region][faker.Number(0, len(regions[region])-1)]
		supplier := supplierNames[faker.Number(0, len(supplierNames)-1)]
		brand := brands[faker.Number(0, len(brands)-1)]
		category := categories[faker.Number(0, len(categories)-1)]

		quantity := faker.Number(1, 10)
		unitPrice := decimal.NewFromFloat(faker.Price(15, 2500)).Round(2)
		discount := decimal.NewFromInt(int64(faker.Number(0, 30))).Div(decimal.NewFromInt(100))

		rec := models.StagingSale{
			SaleID:          baseSaleID + int64(i) + 1,
			SaleDatetime:    faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()),
			RegionName:      region,
			City:            city,
			Manager:         managers[faker.Number(0, len(managers)-1)],
			ProductName:     brand + " " + faker.ProductName(),
			Brand:           brand,
			Category:        category,
			SupplierName:    supplier,
			SupplierCountry: suppliers[supplier],
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			Discount:        discount,
			PaymentType:     paymentTypes[faker.Number(0, len(paymentTypes)-1)],
			SalesChannel:    salesChannels[faker.Number(0, len(salesChannels)-1)],
		}

		if err := db.Create(&rec).Error; err != nil {
			log.Fatalf("Failed to insert record %d: %v", i, err)
		}
		inserted++
	}

	log.Printf("✅ Seeded %d staging record(s)", inserted)
}
