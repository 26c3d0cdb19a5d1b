package sources

import (
	"testing"
	"time"
)

const listingFixture = `{
  "data": {
    "children": [
      {
        "data": {
          "id": "abc12",
          "name": "t3_abc12",
          "subreddit": "golang",
          "author": "gopher",
          "author_fullname": "t2_u1",
          "title": "Generics in practice",
          "selftext": "A year of using them in production.",
          "ups": 42,
          "num_comments": 17,
          "created_utc": 1740000000
        }
      },
      {
        "data": {
          "id": "def34",
          "name": "t3_def34",
          "subreddit": "golang",
          "author": "linkonly",
          "title": "Interesting article",
          "ups": 3,
          "num_comments": 0,
          "created_utc": 1740000100
        }
      },
      {
        "data": {"id": "", "title": "deleted"}
      }
    ]
  }
}`

func TestParseListing(t *testing.T) {
	posts, err := parseListing([]byte(listingFixture))
	if err != nil {
		t.Fatal(err)
	}

	if len(posts) != 2 {
		t.Fatalf("parseListing() returned %d posts, want 2", len(posts))
	}

	p := posts[0]
	if p.ID != "t3_abc12" {
		t.Errorf("ID = %q, want fullname t3_abc12", p.ID)
	}
	if p.AuthorName != "gopher" {
		t.Errorf("AuthorName = %q", p.AuthorName)
	}
	if p.Text != "Generics in practice\n\nA year of using them in production." {
		t.Errorf("Text = %q, want title joined with selftext", p.Text)
	}
	if p.Likes != 42 || p.Replies != 17 {
		t.Errorf("engagement = %d likes / %d replies", p.Likes, p.Replies)
	}
	if p.Source != "reddit" {
		t.Errorf("Source = %q", p.Source)
	}

	want := time.Unix(1740000000, 0).UTC()
	if !p.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, want)
	}

	// A link post without selftext keeps just the title.
	if posts[1].Text != "Interesting article" {
		t.Errorf("link post text = %q", posts[1].Text)
	}
}

func TestParseListingBadJSON(t *testing.T) {
	if _, err := parseListing([]byte("not json")); err == nil {
		t.Error("expected error for malformed listing")
	}
}
