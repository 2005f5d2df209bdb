// Package demo holds the reference and sample data loaded into the in-memory
// store and, on request, seeded into a fresh SQL database.
package demo

import (
	"time"

	"github.com/procare-io/srportal/internal/models"
)

// Password is shared by every demo account.
const Password = "demo1234"

type UserSeed struct {
	models.User
	Password string
}

type LegalSeed struct {
	CountryCode  string
	LanguageCode string
	models.LegalDocument
}

type CustomerSeed struct {
	CustomerNumber string
	CustomerName   string
	Territory      string
	CountryCode    string
}

type ReasonSeed struct {
	LanguageCode string
	models.IssueReason
}

type Dataset struct {
	Users                 []UserSeed
	Languages             []models.Language
	Countries             []models.Country
	LegalDocuments        []LegalSeed
	Customers             []CustomerSeed
	Contacts              []models.Customer
	Items                 []models.Item
	Reasons               []ReasonSeed
	RepairabilityStatuses []models.RepairabilityStatus
}

var effective = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Default returns a fresh copy of the demo dataset.
func Default() *Dataset {
	return &Dataset{
		Users: []UserSeed{
			{User: models.User{
				Email: "customer@stmarys.example", Name: "Jane Miller", Role: models.RoleCustomer,
				CustomerNumber: "CUST-001", CustomerName: "St. Mary's Medical Center", CountryCode: "US",
				IsActive: true, Territories: []string{"US-EAST"},
			}, Password: Password},
			{User: models.User{
				Email: "einkauf@klinikum.example", Name: "Lukas Weber", Role: models.RoleCustomer,
				CustomerNumber: "CUST-002", CustomerName: "Klinikum Süd", CountryCode: "DE",
				IsActive: true, Territories: []string{"DE-SOUTH"},
			}, Password: Password},
			{User: models.User{
				Email: "tech@procare.example", Name: "Sam Ortiz", Role: models.RoleSalesTech,
				CountryCode: "US", IsActive: true, Territories: []string{"US-EAST", "US-WEST"},
			}, Password: Password},
			{User: models.User{
				Email: "admin@procare.example", Name: "Alex Admin", Role: models.RoleAdmin,
				IsActive: true, Territories: []string{},
			}, Password: Password},
			{User: models.User{
				Email: "former@stmarys.example", Name: "Pat Former", Role: models.RoleCustomer,
				CustomerNumber: "CUST-001", CustomerName: "St. Mary's Medical Center", CountryCode: "US",
				IsActive: false, Territories: []string{"US-EAST"},
			}, Password: Password},
		},
		Languages: []models.Language{
			{LanguageCode: "en", LanguageName: "English"},
			{LanguageCode: "es", LanguageName: "Español"},
			{LanguageCode: "de", LanguageName: "Deutsch"},
			{LanguageCode: "fr", LanguageName: "Français"},
		},
		Countries: []models.Country{
			{CountryCode: "DE", CountryName: "Germany", DefaultLanguage: "de", SupportedLanguages: []string{"de", "en"}},
			{CountryCode: "FR", CountryName: "France", DefaultLanguage: "fr", SupportedLanguages: []string{"fr", "en"}},
			{CountryCode: "GB", CountryName: "United Kingdom", DefaultLanguage: "en", SupportedLanguages: []string{"en"}},
			{CountryCode: "US", CountryName: "United States", DefaultLanguage: "en", SupportedLanguages: []string{"en", "es"}},
		},
		LegalDocuments: []LegalSeed{
			{CountryCode: "US", LanguageCode: "en", LegalDocument: models.LegalDocument{
				DocumentType: "TermsAndConditions", Version: "2025.1", EffectiveDate: effective,
				DocumentContent: "# Service Terms\n\nEquipment is serviced under the **ProCare** service agreement.\n\n- Loaners are subject to availability.\n- Quotes are valid for 30 days.\n",
			}},
			{CountryCode: "US", LanguageCode: "en", LegalDocument: models.LegalDocument{
				DocumentType: "PrivacyPolicy", Version: "2025.1", EffectiveDate: effective,
				DocumentURL:     "https://procare.example/privacy",
				DocumentContent: "# Privacy\n\nContact details are used only to process service requests.\n",
			}},
			{CountryCode: "DE", LanguageCode: "de", LegalDocument: models.LegalDocument{
				DocumentType: "TermsAndConditions", Version: "2025.1", EffectiveDate: effective,
				DocumentContent: "# Servicebedingungen\n\nGeräte werden im Rahmen des **ProCare** Servicevertrags gewartet.\n",
			}},
			{CountryCode: "DE", LanguageCode: "en", LegalDocument: models.LegalDocument{
				DocumentType: "TermsAndConditions", Version: "2025.1", EffectiveDate: effective,
				DocumentContent: "# Service Terms\n\nEquipment is serviced under the **ProCare** service agreement.\n",
			}},
		},
		Customers: []CustomerSeed{
			{CustomerNumber: "CUST-001", CustomerName: "St. Mary's Medical Center", Territory: "US-EAST", CountryCode: "US"},
			{CustomerNumber: "CUST-002", CustomerName: "Klinikum Süd", Territory: "DE-SOUTH", CountryCode: "DE"},
			{CustomerNumber: "CUST-003", CustomerName: "Pacific Surgical Partners", Territory: "US-WEST", CountryCode: "US"},
			{CustomerNumber: "CUST-004", CustomerName: "Mercy Surgical Institute", Territory: "US-EAST", CountryCode: "US"},
		},
		Contacts: []models.Customer{
			{
				Email: "customer@stmarys.example", CustomerNumber: "CUST-001", CustomerName: "St. Mary's Medical Center",
				FirstName: "Jane", LastName: "Miller", Phone: "+1 555 0100", CountryCode: "US",
				BillToAddress: "100 Main St, Boston, MA 02110", ShipToAddress: "Receiving Dock B, 100 Main St, Boston, MA 02110",
				HasProCareContract: true,
			},
			{
				Email: "einkauf@klinikum.example", CustomerNumber: "CUST-002", CustomerName: "Klinikum Süd",
				FirstName: "Lukas", LastName: "Weber", Phone: "+49 89 555 0200", CountryCode: "DE",
				BillToAddress: "Klinikstraße 1, 80331 München", ShipToAddress: "Klinikstraße 1, 80331 München",
			},
			{
				Email: "or.manager@pacific.example", CustomerNumber: "CUST-003", CustomerName: "Pacific Surgical Partners",
				FirstName: "Dana", LastName: "Lee", Phone: "+1 555 0300", CountryCode: "US",
				ShipToAddress: "500 Ocean Ave, San Diego, CA 92101", HasProCareContract: true,
			},
		},
		Items: []models.Item{
			{
				ItemNumber: "ITEM-SUR-001", ItemDescription: "Advanced Surgical System Model X200",
				SerialNumber: "SN-X200-0001", LotNumber: "LOT-2024-01", ProductFamily: "Surgical Systems", ProductLine: "Robotics",
				IsServiceable: true, RepairabilityStatus: "REPAIRABLE", InstallBaseStatus: "ACTIVE",
				EligibilityCountries: []string{"US", "DE", "GB"},
			},
			{
				ItemNumber: "ITEM-SUR-001", ItemDescription: "Advanced Surgical System Model X200",
				SerialNumber: "SN-X200-0002", LotNumber: "LOT-2024-01", ProductFamily: "Surgical Systems", ProductLine: "Robotics",
				IsServiceable: true, RepairabilityStatus: "REPAIRABLE", InstallBaseStatus: "ACTIVE",
				EligibilityCountries: []string{"US", "DE", "GB"},
			},
			{
				ItemNumber: "ITEM-SUR-001", ItemDescription: "Advanced Surgical System Model X200",
				SerialNumber: "SN-X200-0099", LotNumber: "LOT-2019-07", ProductFamily: "Surgical Systems", ProductLine: "Robotics",
				IsServiceable: true, RepairabilityStatus: "REPAIRABLE", InstallBaseStatus: "DECOMMISSIONED",
				EligibilityCountries: []string{"US", "DE", "GB"},
			},
			{
				ItemNumber: "ITEM-END-010", ItemDescription: "HD Endoscope Camera Head",
				SerialNumber: "SN-END-1001", LotNumber: "LOT-2023-11", ProductFamily: "Endoscopy", ProductLine: "Visualization",
				IsServiceable: true, RepairabilityStatus: "DEPOT_REPAIR", InstallBaseStatus: "ACTIVE",
				EligibilityCountries: []string{"US"},
			},
			{
				ItemNumber: "ITEM-MON-200", ItemDescription: "Patient Monitor PM-200",
				SerialNumber: "SN-PM200-5001", LotNumber: "LOT-2022-05", ProductFamily: "Monitoring", ProductLine: "Critical Care",
				IsServiceable: false, RepairabilityStatus: "NOT_REPAIRABLE", InstallBaseStatus: "ACTIVE",
				EligibilityCountries: []string{"US", "DE"},
			},
			{
				ItemNumber: "ITEM-INS-300", ItemDescription: "Laparoscopic Instrument Set",
				LotNumber: "LOT-2025-03", ProductFamily: "Instruments", ProductLine: "Laparoscopy",
				IsServiceable: true, RepairabilityStatus: "EXCHANGE", InstallBaseStatus: "ACTIVE",
				EligibilityCountries: []string{"US", "DE", "FR"},
			},
		},
		Reasons: reasons(),
		RepairabilityStatuses: []models.RepairabilityStatus{
			{StatusCode: "DEPOT_REPAIR", StatusName: "Depot Repair", Description: "Shipped to a regional repair depot", RepairLocation: "Depot"},
			{StatusCode: "EXCHANGE", StatusName: "Exchange", Description: "Replaced from exchange stock", RepairLocation: "Warehouse"},
			{StatusCode: "NOT_REPAIRABLE", StatusName: "Not Repairable", Description: "No repair path is available"},
			{StatusCode: "REPAIRABLE", StatusName: "Repairable", Description: "Repaired on site by a field engineer", RepairLocation: "Field"},
		},
	}
}

func reasons() []ReasonSeed {
	type group struct {
		main string
		subs []string
	}
	byLanguage := map[string][]group{
		"en": {
			{"Equipment Malfunction", []string{"Does not power on", "Error code displayed", "Intermittent failure", "Noise or vibration"}},
			{"Physical Damage", []string{"Dropped", "Fluid ingress", "Cracked housing"}},
			{"Preventive Maintenance", []string{"Scheduled service", "Calibration"}},
			{"Software Issue", []string{"Update required", "Application crash"}},
			{"Other", nil},
		},
		"de": {
			{"Gerätestörung", []string{"Lässt sich nicht einschalten", "Fehlercode angezeigt"}},
			{"Physischer Schaden", []string{"Heruntergefallen", "Flüssigkeitseintritt"}},
			{"Wartung", []string{"Planmäßige Wartung", "Kalibrierung"}},
			{"Sonstiges", nil},
		},
	}

	var out []ReasonSeed
	for _, lang := range []string{"en", "de"} {
		for i, g := range byLanguage[lang] {
			order := (i + 1) * 10
			if len(g.subs) == 0 {
				out = append(out, ReasonSeed{LanguageCode: lang, IssueReason: models.IssueReason{MainReason: g.main, DisplayOrder: order}})
				continue
			}
			for _, sub := range g.subs {
				out = append(out, ReasonSeed{LanguageCode: lang, IssueReason: models.IssueReason{MainReason: g.main, SubReason: sub, DisplayOrder: order}})
			}
		}
	}
	return out
}
