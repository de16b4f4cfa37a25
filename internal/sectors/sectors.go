package sectors

import (
	"strings"

	"github.com/wrenlab/sectorscope/internal/contracts"
)

// The eleven GICS sectors. Immutable reference data; everything that ranks
// or fetches iterates over this set.
const (
	InformationTechnology contracts.Sector = "Information Technology"
	Financials            contracts.Sector = "Financials"
	Energy                contracts.Sector = "Energy"
	HealthCare            contracts.Sector = "Health Care"
	ConsumerDiscretionary contracts.Sector = "Consumer Discretionary"
	ConsumerStaples       contracts.Sector = "Consumer Staples"
	Industrials           contracts.Sector = "Industrials"
	Materials             contracts.Sector = "Materials"
	Utilities             contracts.Sector = "Utilities"
	RealEstate            contracts.Sector = "Real Estate"
	CommunicationServices contracts.Sector = "Communication Services"
)

var all = []contracts.Sector{
	InformationTechnology,
	Financials,
	Energy,
	HealthCare,
	ConsumerDiscretionary,
	ConsumerStaples,
	Industrials,
	Materials,
	Utilities,
	RealEstate,
	CommunicationServices,
}

// SPDR sector ETF per GICS sector.
var etfs = map[contracts.Sector]string{
	InformationTechnology: "XLK",
	Financials:            "XLF",
	Energy:                "XLE",
	HealthCare:            "XLV",
	ConsumerDiscretionary: "XLY",
	ConsumerStaples:       "XLP",
	Industrials:           "XLI",
	Materials:             "XLB",
	Utilities:             "XLU",
	RealEstate:            "XLRE",
	CommunicationServices: "XLC",
}

// CES employment series per sector. Some sectors only have proxy series
// (e.g. retail trade for Consumer Discretionary).
var blsSeries = map[contracts.Sector]string{
	InformationTechnology: "CES6000000001",
	Financials:            "CES5500000001",
	Energy:                "CES1021000001",
	HealthCare:            "CES6562000001",
	ConsumerDiscretionary: "CES4200000001",
	ConsumerStaples:       "CES3100000001",
	Industrials:           "CES3000000001",
	Materials:             "CES1021200001",
	Utilities:             "CES4422000001",
	RealEstate:            "CES5553000001",
	CommunicationServices: "CES5000000001",
}

// All returns the eleven sectors in canonical order. The returned slice
// must not be mutated.
func All() []contracts.Sector {
	return all
}

// Count returns the number of sectors.
func Count() int {
	return len(all)
}

// Valid reports whether s is a known sector.
func Valid(s contracts.Sector) bool {
	_, ok := etfs[s]
	return ok
}

// ByName resolves a sector case-insensitively by display name.
func ByName(name string) (contracts.Sector, bool) {
	for _, s := range all {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

// ETF returns the SPDR ETF ticker tracking the sector.
func ETF(s contracts.Sector) string {
	return etfs[s]
}

// SectorForETF resolves an ETF ticker back to its sector.
func SectorForETF(ticker string) (contracts.Sector, bool) {
	for s, t := range etfs {
		if t == ticker {
			return s, true
		}
	}
	return "", false
}

// BLSSeries returns the CES employment series ID for the sector.
func BLSSeries(s contracts.Sector) string {
	return blsSeries[s]
}

// SectorForBLSSeries resolves a CES series ID back to its sector.
func SectorForBLSSeries(seriesID string) (contracts.Sector, bool) {
	for s, id := range blsSeries {
		if id == seriesID {
			return s, true
		}
	}
	return "", false
}

// RDSector maps a Damodaran industry name to its GICS sector. Industries
// not in the map are skipped by the R&D fetcher.
func RDSector(industry string) (contracts.Sector, bool) {
	s, ok := damodaranToGICS[industry]
	return s, ok
}

// Damodaran industry names mapped to GICS sectors. Names follow the
// published dataset and need updating when the dataset's industry
// breakdown changes.
var damodaranToGICS = map[string]contracts.Sector{
	"Software (System & Application)":        InformationTechnology,
	"Software (Entertainment)":               InformationTechnology,
	"Software (Internet)":                    InformationTechnology,
	"Semiconductor":                          InformationTechnology,
	"Semiconductor Equip":                    InformationTechnology,
	"Computer Services":                      InformationTechnology,
	"Computers/Peripherals":                  InformationTechnology,
	"Electronics (Consumer & Office)":        InformationTechnology,
	"Electronics (General)":                  InformationTechnology,
	"Banks (Regional)":                       Financials,
	"Banks (Money Center)":                   Financials,
	"Financial Svcs. (Non-bank & Insurance)": Financials,
	"Insurance (General)":                    Financials,
	"Insurance (Life)":                       Financials,
	"Insurance (Prop/Cas.)":                  Financials,
	"Brokerage & Investment Banking":         Financials,
	"Oil/Gas (Production and Exploration)":   Energy,
	"Oil/Gas (Integrated)":                   Energy,
	"Oil/Gas Distribution":                   Energy,
	"Oilfield Svcs/Equip.":                   Energy,
	"Healthcare Products":                    HealthCare,
	"Healthcare Support Services":            HealthCare,
	"Healthcare Information and Technology":  HealthCare,
	"Hospitals/Healthcare Facilities":        HealthCare,
	"Drugs (Pharmaceutical)":                 HealthCare,
	"Drugs (Biotechnology)":                  HealthCare,
	"Medical Supplies":                       HealthCare,
	"Retail (General)":                       ConsumerDiscretionary,
	"Retail (Online)":                        ConsumerDiscretionary,
	"Retail (Special Lines)":                 ConsumerDiscretionary,
	"Auto & Truck":                           ConsumerDiscretionary,
	"Auto Parts":                             ConsumerDiscretionary,
	"Apparel":                                ConsumerDiscretionary,
	"Restaurant/Dining":                      ConsumerDiscretionary,
	"Hotel/Gaming":                           ConsumerDiscretionary,
	"Household Products":                     ConsumerStaples,
	"Food Processing":                        ConsumerStaples,
	"Beverage (Alcoholic)":                   ConsumerStaples,
	"Beverage (Soft)":                        ConsumerStaples,
	"Tobacco":                                ConsumerStaples,
	"Aerospace/Defense":                      Industrials,
	"Air Transport":                          Industrials,
	"Trucking":                               Industrials,
	"Transportation":                         Industrials,
	"Machinery":                              Industrials,
	"Industrial Services":                    Industrials,
	"Building Materials":                     Industrials,
	"Engineering/Construction":               Industrials,
	"Metals & Mining":                        Materials,
	"Steel":                                  Materials,
	"Chemical (Basic)":                       Materials,
	"Chemical (Diversified)":                 Materials,
	"Chemical (Specialty)":                   Materials,
	"Paper/Forest Products":                  Materials,
	"Packaging & Container":                  Materials,
	"Utility (General)":                      Utilities,
	"Utility (Water)":                        Utilities,
	"Power":                                  Utilities,
	"R.E.I.T.":                               RealEstate,
	"Real Estate (General/Diversified)":      RealEstate,
	"Real Estate (Development)":              RealEstate,
	"Real Estate (Operations & Services)":    RealEstate,
	"Telecom Services":                       CommunicationServices,
	"Telecom. Equipment":                     CommunicationServices,
	"Broadcasting":                           CommunicationServices,
	"Cable TV":                               CommunicationServices,
	"Entertainment":                          CommunicationServices,
	"Publishing & Newspapers":                CommunicationServices,
	"Advertising":                            CommunicationServices,
}
