package tts

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"CustomVoice", ModeCustomVoice, false},
		{"customvoice", ModeCustomVoice, false},
		{"custom-voice", ModeCustomVoice, false},
		{"VOICE_DESIGN", ModeVoiceDesign, false},
		{"design", ModeVoiceDesign, false},
		{" voice clone ", ModeVoiceClone, false},
		{"clone", ModeVoiceClone, false},
		{"karaoke", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if got := Mode(9).String(); got != "Mode(9)" {
		t.Errorf("unknown mode String() = %q", got)
	}
}

func TestVariantMode(t *testing.T) {
	tests := []struct {
		v    Variant
		want Mode
	}{
		{CustomVoice{Speaker: "A"}, ModeCustomVoice},
		{VoiceDesign{Instruct: "x"}, ModeVoiceDesign},
		{VoiceClone{RefAudio: "a.wav"}, ModeVoiceClone},
	}
	for _, tt := range tests {
		if got := tt.v.Mode(); got != tt.want {
			t.Errorf("%T.Mode() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	req := Normalize(Request{Text: "  hi \n", Variant: CustomVoice{Speaker: " A ", Instruct: " calm "}})
	cv := req.Variant.(CustomVoice)
	if req.Text != "hi" || cv.Speaker != "A" || cv.Instruct != "calm" {
		t.Errorf("Normalize = %+v", req)
	}
}
