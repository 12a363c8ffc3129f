package portal

import (
	"testing"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookingListPage = `
<html><body>
<table class="tbl_list">
  <thead><tr><th>번호</th><th>시설</th><th>대관일</th><th>시간</th><th>신청자</th><th>상태</th></tr></thead>
  <tbody>
    <tr>
      <td>RSV-1041</td>
      <td> 스튜디오 A </td>
      <td>2026-09-03</td>
      <td>10:00 ~ 12:00</td>
      <td>김민수</td>
      <td>승인</td>
    </tr>
    <tr>
      <td>RSV-1042</td>
      <td>편집실 2</td>
      <td>2026-09-04</td>
      <td>14:00 ~ 15:00, 16:00 ~ 18:00</td>
      <td>이서연</td>
      <td>승인대기</td>
    </tr>
    <tr>
      <td colspan="6">조회된 내역이 없습니다.</td>
    </tr>
  </tbody>
</table>
</body></html>`

const bookingDetailPage = `
<html><body>
<table class="tbl_view">
  <tr><th>문서번호</th><td>MC-2026-0193</td></tr>
  <tr><th>사용목적</th><td>홍보 영상 촬영</td></tr>
  <tr><th>사용인원</th><td>5명</td></tr>
  <tr><th>사용장비</th><td>카메라, 조명, 마이크</td></tr>
</table>
<div class="file_list">
  <ul>
    <li><a href="/file/1">신청서.pdf</a></li>
    <li><a href="/file/2">기획안.hwp</a></li>
  </ul>
</div>
</body></html>`

func TestParseBookingList(t *testing.T) {
	records, err := parseBookingList(bookingListPage)
	require.NoError(t, err)
	require.Len(t, records, 2, "filler row must be skipped")

	first := records[0]
	assert.Equal(t, "RSV-1041", first.ExternalID)
	assert.Equal(t, "스튜디오 A", first.FacilityName)
	assert.Equal(t, "2026-09-03", first.RentalDate)
	assert.Equal(t, []int{10, 11}, first.TimeSlots)
	assert.Equal(t, "김민수", first.ApplicantName)
	assert.Equal(t, models.StatusConfirmed, first.Status)

	second := records[1]
	assert.Equal(t, []int{14, 16, 17}, second.TimeSlots)
	assert.Equal(t, models.StatusPending, second.Status)
}

func TestParseBookingList_MissingTable(t *testing.T) {
	_, err := parseBookingList(`<html><body><p>점검 중입니다</p></body></html>`)
	require.Error(t, err)
	assert.Equal(t, CodeParseError, CodeOf(err))
}

func TestParseBookingList_UnknownStatusPassesThrough(t *testing.T) {
	page := `<table class="tbl_list"><tbody><tr>
		<td>RSV-9</td><td>스튜디오 B</td><td>2026-09-05</td><td>09:00 ~ 10:00</td><td>박지훈</td><td>검토중</td>
	</tr></tbody></table>`
	records, err := parseBookingList(page)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.BookingStatus("검토중"), records[0].Status)
}

func TestParseBookingDetail(t *testing.T) {
	detail, err := parseBookingDetail(bookingDetailPage)
	require.NoError(t, err)

	assert.Equal(t, "MC-2026-0193", detail.DocumentNo)
	assert.Equal(t, "홍보 영상 촬영", detail.Purpose)
	assert.Equal(t, "5명", detail.Headcount)
	assert.Equal(t, []string{"카메라", "조명", "마이크"}, detail.Equipment)
	assert.Equal(t, []string{"신청서.pdf", "기획안.hwp"}, detail.SubmittedFiles)
}

func TestParseBookingDetail_MissingRegion(t *testing.T) {
	_, err := parseBookingDetail(`<html><body><div>접근 권한이 없습니다</div></body></html>`)
	require.Error(t, err)
	assert.Equal(t, CodeParseError, CodeOf(err))
}

func TestParseTimeSlots(t *testing.T) {
	tests := []struct {
		raw  string
		want []int
	}{
		{"10:00 ~ 12:00", []int{10, 11}},
		{"14:00~15:00, 16:00 ~ 18:00", []int{14, 16, 17}},
		{"09:00 ~ 09:00", []int{9}},
		{"종일", nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseTimeSlots(tt.raw), "input %q", tt.raw)
	}
}
