package bilibili

// DynamicsResponse is the envelope for a dynamics history page
type DynamicsResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    DynamicsPage `json:"data"`
}

// DynamicsPage is one page of a user's dynamics history
type DynamicsPage struct {
	HasMore    int           `json:"has_more"`
	NextOffset uint64        `json:"next_offset"`
	Cards      []DynamicCard `json:"cards"`
}

// DynamicCard is a single feed entry. Card carries the post payload as a
// serialized JSON document whose shape depends on the post variant.
type DynamicCard struct {
	Desc CardDesc `json:"desc"`
	Card string   `json:"card"`
}

// CardDesc is the envelope metadata attached to every card
type CardDesc struct {
	UID       uint64 `json:"uid"`
	Type      int    `json:"type"`
	DynamicID uint64 `json:"dynamic_id"`
	Timestamp int64  `json:"timestamp"`
}

// OpusFeedResponse is the envelope for an opus feed page
type OpusFeedResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    OpusFeedPage `json:"data"`
}

// OpusFeedPage is one page of a user's opus feed, paginated by an opaque
// string offset
type OpusFeedPage struct {
	Items   []OpusFeedItem `json:"items"`
	Offset  string         `json:"offset"`
	HasMore bool           `json:"has_more"`
}

// OpusFeedItem is a single opus feed entry
type OpusFeedItem struct {
	OpusID string `json:"opus_id"`
}

// OpusDetailResponse is the envelope for an opus detail document
type OpusDetailResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    OpusDetailData `json:"data"`
}

// OpusDetailData wraps the opus item in the detail response
type OpusDetailData struct {
	Item OpusItem `json:"item"`
}

// OpusItem is a structured opus document composed of typed modules
type OpusItem struct {
	IDStr   string       `json:"id_str"`
	Modules []OpusModule `json:"modules"`
}

// Opus module type tags
const (
	ModuleTypeAuthor  = "MODULE_TYPE_AUTHOR"
	ModuleTypeTitle   = "MODULE_TYPE_TITLE"
	ModuleTypeContent = "MODULE_TYPE_CONTENT"
)

// OpusModule is one typed content module; exactly one of the pointer
// fields is populated, selected by ModuleType
type OpusModule struct {
	ModuleType    string             `json:"module_type"`
	ModuleAuthor  *OpusAuthorModule  `json:"module_author,omitempty"`
	ModuleTitle   *OpusTitleModule   `json:"module_title,omitempty"`
	ModuleContent *OpusContentModule `json:"module_content,omitempty"`
}

// OpusAuthorModule carries the author and publish timestamp
type OpusAuthorModule struct {
	Mid     uint64 `json:"mid"`
	Name    string `json:"name"`
	PubTs   int64  `json:"pub_ts"`
	Face    string `json:"face"`
	JumpURL string `json:"jump_url"`
}

// OpusTitleModule carries the document title
type OpusTitleModule struct {
	Text string `json:"text"`
}

// OpusContentModule carries the document body as typed paragraphs
type OpusContentModule struct {
	Paragraphs []OpusParagraph `json:"paragraphs"`
}

// Opus paragraph type tags
const (
	ParaTypeText = 1
	ParaTypePic  = 2
)

// OpusParagraph is one body paragraph; Text or Pic is populated according
// to ParaType. Unknown types carry neither and are skipped by callers.
type OpusParagraph struct {
	ParaType int                `json:"para_type"`
	Text     *OpusTextParagraph `json:"text,omitempty"`
	Pic      *OpusPicParagraph  `json:"pic,omitempty"`
}

// OpusTextParagraph is a run of word nodes
type OpusTextParagraph struct {
	Nodes []OpusTextNode `json:"nodes"`
}

// OpusTextNode is a single text node
type OpusTextNode struct {
	Word OpusWord `json:"word"`
}

// OpusWord carries the node's text
type OpusWord struct {
	Words string `json:"words"`
}

// OpusPicParagraph is an image paragraph
type OpusPicParagraph struct {
	Pics []OpusPic `json:"pics"`
}

// OpusPic is a single image reference
type OpusPic struct {
	URL    string  `json:"url"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Size   float64 `json:"size"`
}
