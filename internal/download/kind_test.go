package download

import "testing"

// TestClassify covers the recognized URL shapes for each service.
func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want Kind
	}{
		{"drive file link", "https://drive.google.com/file/d/1AbC_dEf/view?usp=sharing", KindGoogleDrive},
		{"drive open link", "https://drive.google.com/open?id=1AbC_dEf", KindGoogleDrive},
		{"linkedin post", "https://www.linkedin.com/posts/jane-doe_activity-123", KindLinkedIn},
		{"linkedin feed update", "https://www.linkedin.com/feed/update/urn:li:activity:7001/", KindLinkedIn},
		{"linkedin profile is not a post", "https://www.linkedin.com/in/jane-doe/", KindUnknown},
		{"youtube watch", "https://www.youtube.com/watch?v=abc123", KindYouTube},
		{"youtube short link", "https://youtu.be/abc123", KindYouTube},
		{"direct mp3", "https://cdn.example.com/audio/episode.mp3", KindDirect},
		{"direct mp4 with query", "https://cdn.example.com/video.mp4?token=x", KindDirect},
		{"plain web page", "https://example.com/about", KindUnknown},
		{"not a url", "://broken", KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.url); got != tc.want {
				t.Errorf("Classify(%q) = %s, want %s", tc.url, got, tc.want)
			}
		})
	}
}

// TestDriveFileID covers both Drive URL shapes.
func TestDriveFileID(t *testing.T) {
	cases := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"file path shape", "https://drive.google.com/file/d/1AbC_dEf/view", "1AbC_dEf", true},
		{"file path without trailing segment", "https://drive.google.com/file/d/1AbC_dEf", "1AbC_dEf", true},
		{"query shape", "https://drive.google.com/uc?id=1AbC_dEf&export=download", "1AbC_dEf", true},
		{"open shape", "https://drive.google.com/open?id=xyz", "xyz", true},
		{"no id present", "https://drive.google.com/drive/my-drive", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := DriveFileID(tc.url)
			if ok != tc.wantOK || id != tc.wantID {
				t.Errorf("DriveFileID(%q) = (%q, %v), want (%q, %v)", tc.url, id, ok, tc.wantID, tc.wantOK)
			}
		})
	}
}
