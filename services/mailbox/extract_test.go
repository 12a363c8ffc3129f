package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCode_KeywordPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantOK   bool
	}{
		{
			name:     "code after keyword",
			body:     "안녕하세요. 인증코드: 822436 을 입력해 주세요.",
			wantCode: "822436",
			wantOK:   true,
		},
		{
			name:     "keyword code beats earlier marketing numerals",
			body:     "이벤트 할인 150000원! 인증 코드는 443921 입니다.",
			wantCode: "443921",
			wantOK:   true,
		},
		{
			name:   "bare six digits without any verification keyword",
			body:   "주문번호 123456 이 접수되었습니다.",
			wantOK: false,
		},
		{
			name:     "bare six digits allowed when keyword appears elsewhere",
			body:     "본인 확인을 위한 인증 절차입니다. 숫자를 입력하세요: 990012",
			wantCode: "990012",
			wantOK:   true,
		},
		{
			name:     "html markup stripped before matching",
			body:     `<html><body><p>인증코드</p><p><b>7 7 </b></p><div>인증코드: <span>314159</span></div></body></html>`,
			wantCode: "314159",
			wantOK:   true,
		},
		{
			name:   "empty body",
			body:   "",
			wantOK: false,
		},
		{
			name:   "keyword but no six digit run",
			body:   "인증코드가 곧 발송됩니다. 잠시만 기다려 주세요.",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := extractCode(tt.body)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCode, code)
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	in := `<div>인증코드:&nbsp;<b>822436</b><br/>감사합니다</div>`
	out := stripHTML(in)
	assert.NotContains(t, out, "<")
	assert.Contains(t, out, "822436")
}
