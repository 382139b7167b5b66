package bot

import (
	"strings"
	"testing"
)

func TestClassifySlashCommands(t *testing.T) {
	tests := []struct {
		input   string
		command Command
		args    []string
	}{
		{"/start", CmdStart, nil},
		{"/help", CmdHelp, nil},
		{"/daily", CmdDaily, nil},
		{"/daily@invest_bot", CmdDaily, nil},
		{"/weekly", CmdWeekly, nil},
		{"/hot", CmdHot, nil},
		{"/keyword 금리", CmdKeyword, []string{"금리"}},
		{"/channel 체슬리TV", CmdChannel, []string{"체슬리TV"}},
		{"/influencer 오건영", CmdInfluencer, []string{"오건영"}},
		{"/trend 주식", CmdTrend, []string{"주식"}},
		{"/multi 주식 금리 달러", CmdMulti, []string{"주식", "금리", "달러"}},
		{"/unknown", CmdUnknown, nil},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			req := Classify(tc.input)
			if req.Command != tc.command {
				t.Errorf("Classify(%q).Command = %v, want %v", tc.input, req.Command, tc.command)
			}
			if len(req.Args) != len(tc.args) {
				t.Fatalf("Classify(%q).Args = %v, want %v", tc.input, req.Args, tc.args)
			}
			for i := range tc.args {
				if req.Args[i] != tc.args[i] {
					t.Errorf("arg %d: got %q, want %q", i, req.Args[i], tc.args[i])
				}
			}
		})
	}
}

func TestClassifyNaturalLanguage(t *testing.T) {
	tests := []struct {
		input    string
		command  Command
		firstArg string
	}{
		{"오늘 코스피 어때?", CmdKeyword, "주식"},
		{"나스닥 분위기 알려줘", CmdKeyword, "주식"},
		{"요즘 아파트 값 어때", CmdKeyword, "부동산"},
		{"연준이 기준금리 올릴까?", CmdKeyword, "금리"},
		{"환율 전망 알려줘", CmdKeyword, "달러"},
		{"오늘 시장 정리해줘", CmdDaily, ""},
		{"주간 리포트 보여줘", CmdWeekly, ""},
		{"요즘 핫한 주제 뭐야", CmdHot, ""},
		{"최근 주식 트렌드 알려줘", CmdTrend, "주식"},
		{"체슬리 채널 분석해줘", CmdChannel, "체슬리"},
		{"오건영 의견 궁금해", CmdInfluencer, "오건영"},
		{"안녕하세요", CmdUnknown, ""},
		{"", CmdUnknown, ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			req := Classify(tc.input)
			if req.Command != tc.command {
				t.Errorf("Classify(%q).Command = %v, want %v", tc.input, req.Command, tc.command)
			}
			if tc.firstArg != "" {
				if len(req.Args) == 0 || req.Args[0] != tc.firstArg {
					t.Errorf("Classify(%q).Args = %v, want first arg %q", tc.input, req.Args, tc.firstArg)
				}
			}
		})
	}
}

func TestClassifyPersonBeatsKeyword(t *testing.T) {
	// A message naming a person is asking about the person, even when it
	// also contains a keyword trigger.
	req := Classify("오건영은 금리를 어떻게 볼까")
	if req.Command != CmdInfluencer {
		t.Errorf("expected influencer routing, got %v", req.Command)
	}
}

func TestSplitMessageShortTextUntouched(t *testing.T) {
	chunks := splitMessage("짧은 메시지", 4000)
	if len(chunks) != 1 || chunks[0] != "짧은 메시지" {
		t.Errorf("short text should be a single chunk: %v", chunks)
	}
}

func TestSplitMessageBreaksOnLines(t *testing.T) {
	lines := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		lines = append(lines, strings.Repeat("가", 50))
	}
	text := strings.Join(lines, "\n")

	chunks := splitMessage(text, 500)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > 500 {
			t.Errorf("chunk %d has %d runes, limit is 500", i, n)
		}
		if strings.HasPrefix(chunk, "\n") || strings.HasSuffix(chunk, "\n") {
			t.Errorf("chunk %d has dangling newline", i)
		}
	}

	reassembled := strings.Join(chunks, "\n")
	if reassembled != text {
		t.Error("chunks do not reassemble to the original text")
	}
}

func TestSplitMessageHardSplitsLongLine(t *testing.T) {
	text := strings.Repeat("가", 1200)
	chunks := splitMessage(text, 500)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Error("hard-split chunks do not reassemble")
	}
}
