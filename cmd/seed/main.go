package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/binghan60/EKERA-LunchBOT/config"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/repository"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/service"
	"github.com/binghan60/EKERA-LunchBOT/internal/db"
	"github.com/binghan60/EKERA-LunchBOT/internal/storage"
	"github.com/xuri/excelize/v2"
)

// seedRow is one restaurant row from the workbook.
// Expected columns: group_id, restaurant name, office, address, phone.
type seedRow struct {
	GroupID string
	Name    string
	Office  string
	Address string
	Phone   string
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readSeedRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Parsed %d restaurant rows\n", len(rows))

	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())
	bindingRepo := repository.NewBindingRepository(db.GetDB())
	configRepo := repository.NewGroupConfigRepository(db.GetDB())

	restaurants := service.NewRestaurantService(restaurantRepo, bindingRepo, storage.NewNoopImageStore())
	bindings := service.NewBindingService(bindingRepo, restaurantRepo, configRepo)
	configs := service.NewGroupConfigService(configRepo, bindingRepo)

	imported := 0
	skipped := 0
	for _, row := range rows {
		if _, err := configs.EnsureConfig(row.GroupID); err != nil {
			log.Fatal("Failed to prepare group configuration:", err)
		}
		if _, _, err := configs.AddOffice(row.GroupID, row.Office); err != nil {
			log.Fatal("Failed to register office:", err)
		}

		restaurant, created, err := restaurants.FindOrCreateByName(row.GroupID, row.Name)
		if err != nil {
			log.Fatal("Failed to import restaurant:", err)
		}
		if created && (row.Address != "" || row.Phone != "") {
			update := service.RestaurantUpdateInput{}
			if row.Address != "" {
				update.Address = &row.Address
			}
			if row.Phone != "" {
				update.Phone = &row.Phone
			}
			if _, err := restaurants.UpdateRestaurant(restaurant.ID, row.GroupID, update); err != nil {
				log.Fatal("Failed to fill restaurant details:", err)
			}
		}

		if _, err := bindings.Bind(row.GroupID, row.Office, restaurant.ID, ""); err != nil {
			if errors.Is(err, service.ErrBindingExists) {
				skipped++
				continue
			}
			log.Fatal("Failed to bind restaurant:", err)
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Bindings created: %d, duplicates skipped: %d\n", imported, skipped)
}

func readSeedRows(filePath string) ([]seedRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var out []seedRow
	// First row is the header
	for i, row := range rows[1:] {
		get := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		r := seedRow{
			GroupID: get(0),
			Name:    get(1),
			Office:  get(2),
			Address: get(3),
			Phone:   get(4),
		}
		if r.GroupID == "" || r.Name == "" || r.Office == "" {
			fmt.Printf("Skipping row %d: group_id, name and office are required\n", i+2)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
