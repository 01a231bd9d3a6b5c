package idx

import (
	"bytes"
	"encoding/json"
)

// flexString decodes a JSON value that the exchange serves inconsistently
// as either a string or a bare number. Null decodes to the empty string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

func (s flexString) String() string { return string(s) }

// --- Exchange API response types ---

type securitiesResponse struct {
	Data []struct {
		Code string `json:"Code"`
		Name string `json:"Name"`
	} `json:"data"`
}

type profileResponse struct {
	ResultCount     int              `json:"ResultCount"`
	Profiles        []profileRow     `json:"Profiles"`
	Directors       []boardRow       `json:"Direktur"`
	Commissioners   []boardRow       `json:"Komisaris"`
	AuditCommittees []boardRow       `json:"KomiteAudit"`
	Shareholders    []shareholderRow `json:"PemegangSaham"`
}

type profileRow struct {
	NamaEmiten        flexString `json:"NamaEmiten"`
	Alamat            flexString `json:"Alamat"`
	BAE               flexString `json:"BAE"`
	Industri          flexString `json:"Industri"`
	SubIndustri       flexString `json:"SubIndustri"`
	SubSektor         flexString `json:"SubSektor"`
	Email             flexString `json:"Email"`
	Fax               flexString `json:"Fax"`
	PapanPencatatan   flexString `json:"PapanPencatatan"`
	TanggalPencatatan flexString `json:"TanggalPencatatan"`
	Telepon           flexString `json:"Telepon"`
	Website           flexString `json:"Website"`
	NPWP              flexString `json:"NPWP"`
}

type boardRow struct {
	Nama       flexString `json:"Nama"`
	Jabatan    flexString `json:"Jabatan"`
	Afiliasi   bool       `json:"Afiliasi"`
	Independen bool       `json:"Independen"`
}

type shareholderRow struct {
	Nama       flexString `json:"Nama"`
	Kategori   flexString `json:"Kategori"`
	Jumlah     flexString `json:"Jumlah"`
	Persentase flexString `json:"Persentase"`
	Pengendali bool       `json:"Pengendali"`
}

type issuedHistoryResponse struct {
	Data []struct {
		KodeEmiten        string `json:"KodeEmiten"`
		TanggalPencatatan string `json:"TanggalPencatatan"`
	} `json:"data"`
}

// --- Domain types returned by the client ---

// Profile is one company's registration record as served by the exchange.
// Field values are raw strings straight off the wire; normalization into
// the dataset vocabulary happens downstream.
type Profile struct {
	Symbol       string
	CompanyName  string
	Address      string
	Register     string
	Industry     string
	SubIndustry  string
	SubSector    string
	Email        string
	Fax          string
	ListingBoard string
	ListingDate  string
	Phone        string
	Website      string
	NPWP         string

	Directors       []BoardMember
	Commissioners   []BoardMember
	AuditCommittees []BoardMember
	Shareholders    []Shareholder
}

// BoardMember is one row of a governance roster.
type BoardMember struct {
	Name        string
	Position    string
	Affiliated  bool
	Independent bool
}

// Shareholder is one raw ownership row.
type Shareholder struct {
	Name       string
	Category   string
	Amount     string
	Percentage string
}

func (r boardRow) toBoardMember() BoardMember {
	return BoardMember{
		Name:        r.Nama.String(),
		Position:    r.Jabatan.String(),
		Affiliated:  r.Afiliasi,
		Independent: r.Independen,
	}
}

func (r shareholderRow) toShareholder() Shareholder {
	return Shareholder{
		Name:       r.Nama.String(),
		Category:   r.Kategori.String(),
		Amount:     r.Jumlah.String(),
		Percentage: r.Persentase.String(),
	}
}

func boardMembers(rows []boardRow) []BoardMember {
	if len(rows) == 0 {
		return nil
	}
	out := make([]BoardMember, len(rows))
	for i, r := range rows {
		out[i] = r.toBoardMember()
	}
	return out
}
