package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は外部APIから受け取った文字列をプレーンテキストに正規化する。
// レシピタイトルに含まれるHTMLタグを除去し、JSONレスポンスへそのまま載せられる形にする。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はタグを一切許可しないポリシーでTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Text はタグを除去し、HTMLエンティティを元の文字に戻して前後の空白を除く。
// script/styleの中身は出力されない。
func (s *TextSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// ImageURL はhttp/httpsの絶対URLだけを通し、それ以外は空文字を返す。
func (s *TextSanitizer) ImageURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return ""
	}
	return u.String()
}
