package portal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"github.com/PuerkitoBio/goquery"
)

// The portal serves fixed server-rendered pages; extraction targets its
// known regions. Structural mismatches are recoverable PARSE_ERRORs, never
// panics, so one broken record can't abort a batch.

var timeRangePattern = regexp.MustCompile(`(\d{1,2}):\d{2}\s*~\s*(\d{1,2}):\d{2}`)

// parseBookingList extracts booking records from a list page. The list is a
// table with one row per reservation:
// id | facility | rental date | time | applicant | status.
func parseBookingList(html string) ([]models.BookingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, WrapError(CodeParseError, "failed to parse booking list page", err)
	}

	table := doc.Find("table.tbl_list tbody")
	if table.Length() == 0 {
		return nil, NewError(CodeParseError, "booking list table not found")
	}

	var records []models.BookingRecord
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 6 {
			// "no results" filler rows use a single colspan cell.
			return
		}
		record := models.BookingRecord{
			ExternalID:    cellText(cells.Eq(0)),
			FacilityName:  cellText(cells.Eq(1)),
			RentalDate:    cellText(cells.Eq(2)),
			TimeSlots:     parseTimeSlots(cellText(cells.Eq(3))),
			ApplicantName: cellText(cells.Eq(4)),
			Status:        models.ParseBookingStatus(cellText(cells.Eq(5))),
		}
		if record.ExternalID == "" {
			return
		}
		records = append(records, record)
	})
	return records, nil
}

// parseBookingDetail extracts the detail-page regions: the registration
// document table and the submitted-file list. A missing document table is a
// soft parse failure.
func parseBookingDetail(html string) (*models.BookingDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, WrapError(CodeParseError, "failed to parse booking detail page", err)
	}

	table := doc.Find("table.tbl_view")
	if table.Length() == 0 {
		return nil, NewError(CodeParseError, "booking detail region not found")
	}

	detail := &models.BookingDetail{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		label := cellText(row.Find("th").First())
		value := cellText(row.Find("td").First())
		switch label {
		case "문서번호":
			detail.DocumentNo = value
		case "사용목적":
			detail.Purpose = value
		case "사용인원":
			detail.Headcount = value
		case "사용장비":
			detail.Equipment = splitList(value)
		}
	})

	doc.Find("div.file_list li a").Each(func(_ int, link *goquery.Selection) {
		if name := cellText(link); name != "" {
			detail.SubmittedFiles = append(detail.SubmittedFiles, name)
		}
	})

	return detail, nil
}

// parseTimeSlots expands time ranges like "10:00 ~ 12:00" into ordered
// hour-of-day slots ([10, 11]). Multiple comma-separated ranges are merged
// in order of appearance.
func parseTimeSlots(raw string) []int {
	var slots []int
	for _, m := range timeRangePattern.FindAllStringSubmatch(raw, -1) {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		if end <= start {
			slots = append(slots, start)
			continue
		}
		for h := start; h < end; h++ {
			slots = append(slots, h)
		}
	}
	return slots
}

func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
