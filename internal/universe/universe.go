package universe

import "strings"

// Stock is one LQ45 constituent.
type Stock struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// idxSuffix is the Yahoo Finance suffix for IDX-listed stocks.
const idxSuffix = ".JK"

// lq45 lists the LQ45 index constituents, the 45 most liquid stocks on
// the Indonesian exchange. Updated August 2025.
var lq45 = []Stock{
	{"BBCA.JK", "Bank Central Asia Tbk", "Banking"},
	{"BBRI.JK", "Bank Rakyat Indonesia Tbk", "Banking"},
	{"BMRI.JK", "Bank Mandiri Tbk", "Banking"},
	{"BBNI.JK", "Bank Negara Indonesia Tbk", "Banking"},
	{"BBTN.JK", "Bank Tabungan Negara Tbk", "Banking"},
	{"BRIS.JK", "Bank Syariah Indonesia Tbk", "Banking"},
	{"TLKM.JK", "Telkom Indonesia Tbk", "Telecommunications"},
	{"EXCL.JK", "XL Axiata Tbk", "Telecommunications"},
	{"ISAT.JK", "Indosat Ooredoo Hutchison Tbk", "Telecommunications"},
	{"UNVR.JK", "Unilever Indonesia Tbk", "Consumer Goods"},
	{"INDF.JK", "Indofood Sukses Makmur Tbk", "Consumer Goods"},
	{"ICBP.JK", "Indofood CBP Sukses Makmur Tbk", "Consumer Goods"},
	{"KLBF.JK", "Kalbe Farma Tbk", "Consumer Goods"},
	{"MYOR.JK", "Mayora Indah Tbk", "Consumer Goods"},
	{"ULTJ.JK", "Ultra Jaya Milk Industry Tbk", "Consumer Goods"},
	{"PTBA.JK", "Bukit Asam Tbk", "Energy & Mining"},
	{"ADRO.JK", "Adaro Energy Tbk", "Energy & Mining"},
	{"ITMG.JK", "Indo Tambangraya Megah Tbk", "Energy & Mining"},
	{"PTRO.JK", "Petrosea Tbk", "Energy & Mining"},
	{"MEDC.JK", "Medco Energi Internasional Tbk", "Energy & Mining"},
	{"JSMR.JK", "Jasa Marga Tbk", "Infrastructure"},
	{"WIKA.JK", "Wijaya Karya Tbk", "Infrastructure"},
	{"WSKT.JK", "Waskita Karya Tbk", "Infrastructure"},
	{"PTPP.JK", "PP (Persero) Tbk", "Infrastructure"},
	{"BSDE.JK", "Bumi Serpong Damai Tbk", "Property"},
	{"LPKR.JK", "Lippo Karawaci Tbk", "Property"},
	{"PWON.JK", "Pakuwon Jati Tbk", "Property"},
	{"SMRA.JK", "Summarecon Agung Tbk", "Property"},
	{"GOTO.JK", "GoTo Gojek Tokopedia Tbk", "Technology"},
	{"BUKA.JK", "Bukalapak.com Tbk", "Technology"},
	{"ACES.JK", "Ace Hardware Indonesia Tbk", "Retail"},
	{"MAPI.JK", "Mitra Adiperkasa Tbk", "Retail"},
	{"HERO.JK", "Hero Supermarket Tbk", "Retail"},
	{"ASII.JK", "Astra International Tbk", "Automotive"},
	{"AUTO.JK", "Astra Otoparts Tbk", "Automotive"},
	{"INDS.JK", "Indospring Tbk", "Automotive"},
	{"SMGR.JK", "Semen Indonesia Tbk", "Cement"},
	{"INTP.JK", "Indocement Tunggal Prakasa Tbk", "Cement"},
	{"KAEF.JK", "Kimia Farma Tbk", "Pharmaceuticals"},
	{"PYFA.JK", "Pyridam Farma Tbk", "Pharmaceuticals"},
	{"SCMA.JK", "Surya Citra Media Tbk", "Media"},
	{"MNCN.JK", "Media Nusantara Citra Tbk", "Media"},
	{"AALI.JK", "Astra Agro Lestari Tbk", "Agriculture"},
	{"SIMP.JK", "Salim Ivomas Pratama Tbk", "Agriculture"},
	{"LSIP.JK", "PP London Sumatra Indonesia Tbk", "Agriculture"},
}

// Stocks returns the full constituent list.
func Stocks() []Stock {
	out := make([]Stock, len(lq45))
	copy(out, lq45)
	return out
}

// Symbols returns all constituent symbols in index order.
func Symbols() []string {
	symbols := make([]string, len(lq45))
	for i, s := range lq45 {
		symbols[i] = s.Symbol
	}
	return symbols
}

// Lookup finds a constituent by symbol, with or without the .JK suffix.
func Lookup(symbol string) (Stock, bool) {
	symbol = FormatSymbol(symbol)
	for _, s := range lq45 {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return Stock{}, false
}

// FormatSymbol normalizes a ticker to its Yahoo Finance form.
func FormatSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return symbol
	}
	if !strings.HasSuffix(symbol, idxSuffix) {
		symbol += idxSuffix
	}
	return symbol
}

// CleanSymbol strips the exchange suffix for display.
func CleanSymbol(symbol string) string {
	return strings.TrimSuffix(symbol, idxSuffix)
}
