package model

// Article は抽出パイプラインが生成する段落分割済みの記事を表す。
// セッション内にのみ存在する一時データで、新しい抽出のたびに上書きされる。
type Article struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Content []string `json:"content"`
}
