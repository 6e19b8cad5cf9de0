package post

import (
	"reflect"
	"strings"
	"testing"

	"hivedex/internal/model"
)

func testPost() *model.Post {
	community := int64(0)
	return &model.Post{
		ID:                  101,
		Author:              "alice",
		Permlink:            "my-post",
		Category:            "food",
		Depth:               0,
		CommunityID:         &community,
		Created:             "2017-06-01T00:00:00",
		LastUpdate:          "2017-06-01T01:00:00",
		Title:               "Hello",
		Body:                "A post about food.",
		JSONMetadata:        `{"tags":["food","yum","food"]}`,
		CashoutTime:         "2017-06-08T00:00:00",
		LastPayout:          "1970-01-01T00:00:00",
		MaxAcceptedPayout:   "1000000.000 SBD",
		PercentSteemDollars: 10000,
		TotalPayoutValue:    "0.000 SBD",
		CuratorPayoutValue:  "0.000 SBD",
		PendingPayoutValue:  "1.000 SBD",
		AuthorReputation:    2321387987213,
	}
}

func TestPostBasicTags(t *testing.T) {
	p := testPost()
	b, err := PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.Tags, []string{"food", "yum"}) {
		t.Fatalf("tags: %v", b.Tags)
	}
	if b.IsNsfw {
		t.Fatal("unexpected nsfw")
	}

	p.JSONMetadata = `{"tags":["#Fancy ", "nsfw", 42, "", "a", "b", "c"]}`
	b, err = PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.Tags, []string{"food", "fancy", "nsfw", "42", "a"}) {
		t.Fatalf("tags: %v", b.Tags)
	}
	if !b.IsNsfw {
		t.Fatal("expected nsfw from tag list")
	}
}

func TestPostBasicMetadataDegradesSilently(t *testing.T) {
	for _, raw := range []string{"", "not json", `"just a string"`, `[1,2,3]`} {
		p := testPost()
		p.JSONMetadata = raw
		b, err := PostBasic(p)
		if err != nil {
			t.Fatalf("metadata %q: %v", raw, err)
		}
		if len(b.JSONMetadata) != 0 {
			t.Fatalf("metadata %q: expected empty mapping, got %v", raw, b.JSONMetadata)
		}
	}
}

func TestPostBasicImages(t *testing.T) {
	p := testPost()
	p.JSONMetadata = `{"image":"https://img.example/a.png"}`
	b, err := PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if b.Thumbnail != "https://img.example/a.png" {
		t.Fatalf("thumbnail: %q", b.Thumbnail)
	}
	imgs, ok := b.JSONMetadata["image"].([]any)
	if !ok || len(imgs) != 1 {
		t.Fatalf("expected single-value coercion to list, got %v", b.JSONMetadata["image"])
	}

	// unusable entries are dropped; an emptied field is removed entirely
	p.JSONMetadata = `{"image":["javascript:alert(1)", 17]}`
	b, err = PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if b.Thumbnail != "" {
		t.Fatalf("thumbnail: %q", b.Thumbnail)
	}
	if _, ok := b.JSONMetadata["image"]; ok {
		t.Fatal("expected image entry removed")
	}

	p.JSONMetadata = `{"image":["ftp://no", "http://a.example/1.jpg", "http://a.example/2.jpg"]}`
	b, err = PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if b.Thumbnail != "http://a.example/1.jpg" {
		t.Fatalf("thumbnail: %q", b.Thumbnail)
	}
}

func TestPostBasicBodySanitization(t *testing.T) {
	p := testPost()
	p.Body = "before\x00after"
	b, err := PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if b.Body != "before[NUL]after" {
		t.Fatalf("body: %q", b.Body)
	}

	p.Body = strings.Repeat("x", 2000)
	b, err = PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Preview) != 1024 {
		t.Fatalf("preview length: %d", len(b.Preview))
	}
	if len(b.Body) != 2000 {
		t.Fatalf("body must stay untruncated, got %d", len(b.Body))
	}
}

func TestPostBasicPayoutTiming(t *testing.T) {
	p := testPost()
	b, err := PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if b.IsPaidout || b.PayoutAt != p.CashoutTime {
		t.Fatalf("pending post: paidout=%v payoutAt=%q", b.IsPaidout, b.PayoutAt)
	}

	p.CashoutTime = "1969-12-31T23:59:59"
	p.LastPayout = "2017-06-08T00:00:00"
	b, err = PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsPaidout || b.PayoutAt != p.LastPayout {
		t.Fatalf("paid post: paidout=%v payoutAt=%q", b.IsPaidout, b.PayoutAt)
	}
}

func TestPostBasicDeclinedAndFullPower(t *testing.T) {
	p := testPost()
	p.MaxAcceptedPayout = "0.000 SBD"
	b, err := PostBasic(p)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsPayoutDeclined {
		t.Fatal("zero max payout must decline")
	}

	p = testPost()
	p.Beneficiaries = []model.Beneficiary{{Account: "null", Weight: 10000}}
	b, _ = PostBasic(p)
	if !b.IsPayoutDeclined {
		t.Fatal("full burn beneficiary must decline")
	}

	p.Beneficiaries[0].Weight = 9999
	b, _ = PostBasic(p)
	if b.IsPayoutDeclined {
		t.Fatal("partial burn must not decline")
	}

	if b.IsFullPower {
		t.Fatal("50/50 post is not full power")
	}
	p.PercentSteemDollars = 0
	b, _ = PostBasic(p)
	if !b.IsFullPower {
		t.Fatal("zero percent paid in dollars is full power")
	}
}
