// Package models defines the wire types of the scan report.
package models

import "time"

// ScanTimeLayout renders timestamps as ISO-8601 with millisecond
// precision; combined with UTC the zone renders as "Z".
const ScanTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatScanTime formats t for the report, normalized to UTC.
func FormatScanTime(t time.Time) string {
	return t.UTC().Format(ScanTimeLayout)
}

// Result tags of a scan verdict as they appear on the wire.
const (
	ResultClean       = "CLEAN"
	ResultWhitelisted = "WHITELISTED"
	ResultVirus       = "VIRUS"
)

// EngineInfo describes the scan engine and its detection database.
// It is loaded once at startup and shared read-only by all requests.
type EngineInfo struct {
	Version         string
	DatabaseVersion uint32
	SignatureCount  uint32
	DatabaseDate    time.Time
}

// FileResult is the externally visible record for one scanned upload.
// Optional fields are pointers so that absent values serialize as null.
type FileResult struct {
	Name        *string `json:"name"`
	Size        int64   `json:"size"`
	CRC32       string  `json:"crc32"`
	MD5         string  `json:"md5"`
	SHA256      string  `json:"sha256"`
	ContentType *string `json:"contentType"`
	DateScanned string  `json:"dateScanned"`
	Result      string  `json:"result"`
	Signature   *string `json:"signature"`
}

// ScanReport is the response payload for one scan request: engine-wide
// metadata plus per-file results in field arrival order.
type ScanReport struct {
	AvVersion        string       `json:"avVersion"`
	DBVersion        uint32       `json:"dbVersion"`
	DBSignatureCount uint32       `json:"dbSignatureCount"`
	DBDate           string       `json:"dbDate"`
	Results          []FileResult `json:"results"`
}

// NewScanReport combines engine metadata with the ordered result list.
// A request without fields yields an empty (not null) results array.
func NewScanReport(info EngineInfo, results []FileResult) *ScanReport {
	if results == nil {
		results = []FileResult{}
	}
	return &ScanReport{
		AvVersion:        info.Version,
		DBVersion:        info.DatabaseVersion,
		DBSignatureCount: info.SignatureCount,
		DBDate:           FormatScanTime(info.DatabaseDate),
		Results:          results,
	}
}
