package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			if err := db.Exec("TRUNCATE user_permissions, permissions, journal_lines, journal_entries, applications, approval_routes, application_codes, users RESTART IDENTITY CASCADE").Error; err != nil {
				log.Fatalf("failed to clear existing data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Email      string
			Name       string
			Department string
		}{
			{"admin@example.co.jp", "Sato Admin", "management"},
			{"tanaka@example.co.jp", "Tanaka", "sales"},
			{"suzuki@example.co.jp", "Suzuki", "sales"},
			{"yamada@example.co.jp", "Yamada", "accounting"},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
				fmt.Printf("user %s already exists; will ensure permissions\n", u.Email)
				continue
			}

			if err := db.Exec("INSERT INTO users (email, name, password_hash, department, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				u.Email, u.Name, string(hash), u.Department).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		permissions := []struct {
			Name string
			Desc string
		}{
			{"admin", "full administrator"},
			{"create_applications", "Can create and submit applications"},
			{"view_applications", "Can view all applications"},
			{"approve_applications", "Can approve or reject applications"},
			{"manage_routes", "Can manage approval routes"},
			{"export_journals", "Can export accounting journals"},
		}

		for _, p := range permissions {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row().Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		grants := map[string][]string{
			"admin@example.co.jp":  {"admin"},
			"tanaka@example.co.jp": {"create_applications"},
			"suzuki@example.co.jp": {"create_applications", "approve_applications"},
			"yamada@example.co.jp": {"approve_applications", "view_applications", "export_journals", "manage_routes"},
		}

		userIDs := map[string]int64{}
		for email, perms := range grants {
			var userID int64
			if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&userID); err != nil {
				log.Fatalf("failed to lookup user id for %s: %v", email, err)
			}
			userIDs[email] = userID

			for _, permName := range perms {
				var pid int64
				if err := db.Raw("SELECT id FROM permissions WHERE name = ?", permName).Row().Scan(&pid); err != nil {
					log.Fatalf("permission not found %s: %v", permName, err)
				}

				var exists int
				if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", userID, pid).Row().Scan(&exists); err == nil {
					continue
				}

				if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id, granted_by, created_at) VALUES (?, ?, NULL, now())", userID, pid).Error; err != nil {
					log.Fatalf("failed to grant permission %s to %s: %v", permName, email, err)
				}
			}
			fmt.Printf("Granted permissions to %s: %v\n", email, perms)
		}

		codes := []struct {
			Code string
			Name string
			Desc string
		}{
			{"EXP", "Expense", "expense reimbursement"},
			{"TRP", "Transport", "transport and travel expense"},
			{"LEV", "Leave", "leave request"},
			{"APL", "Approval", "general approval request (ringi)"},
			{"DLY", "Daily Report", "daily work report"},
			{"WKR", "Work Record", "overtime and work record"},
		}

		for _, c := range codes {
			var exists int
			if err := db.Raw("SELECT 1 FROM application_codes WHERE code = ?", c.Code).Row().Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO application_codes (code, name, description, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
					c.Code, c.Name, c.Desc).Error; err != nil {
					log.Fatalf("failed to insert application code %s: %v", c.Code, err)
				}
				fmt.Printf("Seeded application code: %s\n", c.Code)
			}
		}

		routeName := "standard two step"
		var routeExists int
		if err := db.Raw("SELECT 1 FROM approval_routes WHERE name = ?", routeName).Row().Scan(&routeExists); err != nil {
			routeData := fmt.Sprintf(`{"steps":[{"approverId":%d},{"approverId":%d}]}`,
				userIDs["suzuki@example.co.jp"], userIDs["yamada@example.co.jp"])
			if err := db.Exec("INSERT INTO approval_routes (name, route_data, is_active, created_at, updated_at) VALUES (?, ?::jsonb, true, now(), now())",
				routeName, routeData).Error; err != nil {
				log.Fatalf("failed to insert approval route: %v", err)
			}
			fmt.Println("Seeded approval route:", routeName)
		}

		fmt.Println("Seeding complete")
	},
}
