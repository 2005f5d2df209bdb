package repository

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/procare-io/srportal/internal/database"
	"github.com/procare-io/srportal/internal/demo"
)

// Seed loads the reference and demo data into an empty, migrated database.
func Seed(ctx context.Context, qb *database.QueryBuilder, data *demo.Dataset, bcryptCost int) error {
	users := NewSQLUserRepository(qb)
	for _, seed := range data.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", seed.Email, err)
		}
		u := seed.User
		u.Password = string(hash)
		if err := users.Create(ctx, &u); err != nil {
			return err
		}
	}

	return qb.WithTx(ctx, func(tx *database.Tx) error {
		exec := func(query string, args ...interface{}) error {
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			return nil
		}

		for _, l := range data.Languages {
			if err := exec("INSERT INTO languages (language_code, language_name) VALUES (?, ?)",
				l.LanguageCode, l.LanguageName); err != nil {
				return err
			}
		}
		for _, c := range data.Countries {
			if err := exec("INSERT INTO countries (country_code, country_name, default_language, is_active) VALUES (?, ?, ?, ?)",
				c.CountryCode, c.CountryName, c.DefaultLanguage, true); err != nil {
				return err
			}
			for _, lang := range c.SupportedLanguages {
				if err := exec("INSERT INTO country_languages (country_code, language_code) VALUES (?, ?)",
					c.CountryCode, lang); err != nil {
					return err
				}
			}
		}
		for _, d := range data.LegalDocuments {
			if err := exec(`INSERT INTO legal_documents
				(country_code, language_code, document_type, document_url, document_content, version, effective_date, is_active)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				d.CountryCode, d.LanguageCode, d.DocumentType, d.DocumentURL, d.DocumentContent,
				d.Version, d.EffectiveDate, true); err != nil {
				return err
			}
		}
		for _, c := range data.Customers {
			if err := exec("INSERT INTO customers (customer_number, customer_name, territory, country_code) VALUES (?, ?, ?, ?)",
				c.CustomerNumber, c.CustomerName, c.Territory, c.CountryCode); err != nil {
				return err
			}
		}
		for _, c := range data.Contacts {
			if err := exec(`INSERT INTO customer_contacts
				(email, customer_number, first_name, last_name, phone, bill_to_address, ship_to_address, has_procare_contract)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				c.Email, c.CustomerNumber, c.FirstName, c.LastName, c.Phone,
				c.BillToAddress, c.ShipToAddress, c.HasProCareContract); err != nil {
				return err
			}
		}

		eligible := make(map[string][]string)
		for _, it := range data.Items {
			var serial interface{}
			if it.SerialNumber != "" {
				serial = it.SerialNumber
			}
			if err := exec(`INSERT INTO items
				(item_number, item_description, serial_number, lot_number, product_family, product_line,
				 is_serviceable, repairability_status, install_base_status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				it.ItemNumber, it.ItemDescription, serial, it.LotNumber, it.ProductFamily, it.ProductLine,
				it.IsServiceable, it.RepairabilityStatus, it.InstallBaseStatus); err != nil {
				return err
			}
			if _, seen := eligible[it.ItemNumber]; !seen {
				eligible[it.ItemNumber] = it.EligibilityCountries
			}
		}
		for item, countries := range eligible {
			for _, cc := range countries {
				if err := exec("INSERT INTO item_eligibility (item_number, country_code) VALUES (?, ?)", item, cc); err != nil {
					return err
				}
			}
		}

		for _, r := range data.Reasons {
			if err := exec(`INSERT INTO issue_reasons (main_reason, sub_reason, language_code, display_order, is_active)
				VALUES (?, ?, ?, ?, ?)`, r.MainReason, r.SubReason, r.LanguageCode, r.DisplayOrder, true); err != nil {
				return err
			}
		}
		for _, s := range data.RepairabilityStatuses {
			if err := exec(`INSERT INTO repairability_statuses (status_code, status_name, description, repair_location)
				VALUES (?, ?, ?, ?)`, s.StatusCode, s.StatusName, s.Description, s.RepairLocation); err != nil {
				return err
			}
		}
		return nil
	})
}
