package feed

import (
	"encoding/json"
	"strconv"

	"bilifetch/pkg/bilibili"
)

// originUnavailable is the sentinel the platform embeds in place of a
// forwarded post whose original has been deleted.
const originUnavailable = "源动态不见了"

// videoPayload is the terminal card shape for a video submission
type videoPayload struct {
	Title     string          `json:"title"`
	Desc      string          `json:"desc"`
	Dynamic   string          `json:"dynamic"`
	ShortLink string          `json:"short_link"`
	Stat      json.RawMessage `json:"stat"`
	Tname     string          `json:"tname"`
	Aid       int64           `json:"aid"`
	Pic       string          `json:"pic"`
}

// plainPayload is the terminal card shape for a plain post
type plainPayload struct {
	Description *string `json:"description"`
	Content     *string `json:"content"`
	Pictures    []struct {
		ImgSrc string `json:"img_src"`
	} `json:"pictures"`
}

// originUserPayload carries the original author of a forwarded post
type originUserPayload struct {
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

// Normalize converts one raw feed card into a canonical Post. It is pure
// and never fails: unrecognized or missing fields degrade to empty values.
//
// The card document may nest its real payload under an item key one or
// more levels deep; the terminal payload is a video submission when it
// carries a videos field, a plain post otherwise. A non-empty serialized
// origin field marks the post as a forward; unless it is the platform's
// origin-unavailable sentinel it is normalized recursively.
func Normalize(desc bilibili.CardDesc, cardJSON string) Post {
	post := Post{
		ID:        strconv.FormatUint(desc.DynamicID, 10),
		Timestamp: desc.Timestamp,
		Kind:      KindPlain,
		Item:      Inner{Pictures: []string{}},
	}

	var card map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cardJSON), &card); err != nil {
		return post
	}

	item, isVideo := unwrapItem(card)
	post.Item = decodeInner(item, isVideo)
	if isVideo {
		post.Kind = KindVideoSubmission
	}

	normalizeOrigin(&post, card)

	return post
}

// normalizeOrigin applies the forward rules to a decoded outer card
func normalizeOrigin(post *Post, card map[string]json.RawMessage) {
	raw, ok := card["origin"]
	if !ok {
		return
	}

	// The origin arrives as a serialized JSON string; tolerate payloads
	// that inline the object directly.
	var originJSON string
	if err := json.Unmarshal(raw, &originJSON); err != nil {
		originJSON = string(raw)
	}
	if originJSON == "" {
		return
	}

	post.Kind = KindForward
	if originJSON == originUnavailable {
		return
	}

	var originCard map[string]json.RawMessage
	if err := json.Unmarshal([]byte(originJSON), &originCard); err != nil {
		return
	}

	item, isVideo := unwrapItem(originCard)
	inner := decodeInner(item, isVideo)
	post.Origin = &inner

	var user originUserPayload
	if buf, err := json.Marshal(originCard); err == nil {
		_ = json.Unmarshal(buf, &user)
	}
	post.OriginAuthor = user.User.Name
}

// unwrapItem descends through nested item objects until it reaches the
// terminal payload, and reports whether that payload carries the videos
// marker of a video submission.
func unwrapItem(card map[string]json.RawMessage) (map[string]json.RawMessage, bool) {
	for {
		raw, ok := card["item"]
		if !ok {
			break
		}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err != nil {
			break
		}
		card = nested
	}

	_, isVideo := card["videos"]
	return card, isVideo
}

// decodeInner decodes the terminal payload into an Inner of the detected
// shape. Decode errors leave the affected fields empty.
func decodeInner(item map[string]json.RawMessage, isVideo bool) Inner {
	buf, err := json.Marshal(item)
	if err != nil {
		return Inner{Pictures: []string{}}
	}

	if isVideo {
		var v videoPayload
		_ = json.Unmarshal(buf, &v)
		return Inner{
			Title:     v.Title,
			Desc:      v.Desc,
			Dynamic:   v.Dynamic,
			ShortLink: v.ShortLink,
			Stat:      v.Stat,
			Category:  v.Tname,
			VideoID:   v.Aid,
			Pictures:  []string{v.Pic},
		}
	}

	var p plainPayload
	_ = json.Unmarshal(buf, &p)

	pictures := make([]string, 0, len(p.Pictures))
	for _, pic := range p.Pictures {
		pictures = append(pictures, pic.ImgSrc)
	}

	return Inner{
		Description: p.Description,
		Content:     p.Content,
		Pictures:    pictures,
	}
}
