package normalize

import "github.com/sahamkita/idxref/pkg/models"

// nameAliases maps title-cased raw holder names to canonical labels.
// Covers government entities, the public-ownership variants used by the
// source locale, treasury-stock labels, and known spelling variants.
// Lookup happens after title casing, so one entry covers the upstream
// upper/lower case variants.
var nameAliases = map[string]string{
	"Saham Treasury":            "Treasury Stock",
	"Pengendali Saham":          "Controlling Shareholder",
	"Non Pengendali Saham":      "Non Controlling Shareholder",
	"Masyarakat Warkat":         "Public (Scrip)",
	"Masyarakat Non Warkat":     "Public (Scripless)",
	"Masyarakat":                "Public",
	"Publik":                    "Public",
	"Masyarakat Lainnya":        "Other Public",
	"Negara Republik Indonesia": "Republic of Indonesia",
	"Kejaksaan Agung":           "Attorney General",
	"Direksi":                   "Director",
	"Afiliasi Pengendali":       "Controlling Affiliate",
	"Pihak Afiliasi":            "Affiliate Parties",
	"Pihak Afilasi":             "Affiliate Parties",
}

// typeAliases maps raw shareholder classification labels to canonical
// English ones.
var typeAliases = map[string]string{
	"Direksi":               "Director",
	"Commisioner":           "Commissioner",
	"Komisaris":             "Commissioner",
	"Kurang Dari 5%":        "Less Than 5%",
	"Lebih Dari 5%":         "More Than 5%",
	"Saham Pengendali":      "Controlling Share",
	"Saham Non Pengendali":  "Non Controlling Share",
	"Masyarakat Warkat":     "Scrip Public Share",
	"Masyarakat Non Warkat": "Scripless Public Share",
}

// roleAliases collapses spelling variants and source-locale role titles
// into one canonical label per roster category. The empty-string entry is
// the category default for blank or missing positions.
var roleAliases = map[models.RosterCategory]map[string]string{
	models.CategoryDirector: {
		"Vice President":          "Vice President Director",
		"Vice Presiden Director":  "Vice President Director",
		"Presiden Direktur":       "President Director",
		"Wakil Presiden Direktur": "Vice President Director",
		"Direktur":                "Director",
		"Direktur Utama":          "President Director",
		"Wakil Direktur Utama":    "Vice President Director",
		"":                        "Director",
	},
	models.CategoryCommissioner: {
		"President Commisioner":      "President Commissioner",
		"Vice President Commisioner": "Vice President Commissioner",
		"Presiden Komisaris":         "President Commissioner",
		"Komisaris":                  "Commissioner",
		"Wakil Komisaris Utama":      "Vice President Commissioner",
		"Komisaris Utama":            "President Commissioner",
		"Wakil Presiden Komisaris":   "Vice President Commissioner",
		"":                           "Commissioner",
	},
	models.CategoryAuditCommittee: {
		"Ketua":                "Head of Audit Committee",
		"Anggota":              "Member of Audit Committee",
		"Ketua Komite Audit":   "Head of Audit Committee",
		"Anggota Komite Audit": "Member of Audit Committee",
		"Head":                 "Head of Audit Committee",
		"Member":               "Member of Audit Committee",
		"":                     "Audit Committee",
	},
}

// subSectorIDs maps the exchange's sub-sector display names to the
// dataset's stable sub-sector identifiers.
var subSectorIDs = map[string]int{
	"Household Goods":                         1,
	"Food & Beverage":                         2,
	"Tobacco":                                 3,
	"Insurance":                               4,
	"Industrial Goods":                        5,
	"Telecommunication":                       6,
	"Properties & Real Estate":                7,
	"Basic Materials":                         8,
	"Apparel & Luxury Goods":                  9,
	"Automobiles & Components":                10,
	"Consumer Services":                       11,
	"Leisure Goods":                           12,
	"Media & Entertainment":                   13,
	"Retailing":                               14,
	"Food & Staples Retailing":                15,
	"Nondurable Household Products":           16,
	"Alternative Energy":                      17,
	"Oil, Gas & Coal":                         18,
	"Banks":                                   19,
	"Financing Service":                       20,
	"Holding & Investment Companies":          21,
	"Investment Service":                      22,
	"Healthcare Equipment & Providers":        23,
	"Pharmaceuticals & Health Care Research":  24,
	"Industrial Services":                     25,
	"Multi-sector Holdings":                   26,
	"Heavy Constructions & Civil Engineering": 27,
	"Transportation Infrastructure":           28,
	"Utilities":                               29,
	"Software & IT Services":                  30,
	"Technology Hardware & Equipment":         31,
	"Logistics & Deliveries":                  32,
	"Transportation":                          33,
}
