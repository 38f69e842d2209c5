// Package security はアプリケーションのセキュリティ機能を提供する。
//
// InputSanitizerService は従業員名やタスクのタイトル・説明などの
// 自由入力テキストをサニタイズし、保存型XSS攻撃からユーザーを保護する。
// bluemondayライブラリのStrictPolicyを使用し、HTMLタグをすべて除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizerService はテキスト入力のサニタイズ機能のインターフェースを定義する。
// 従業員・タスクの作成および更新時、永続化の直前に使用される。
type InputSanitizerService interface {
	// SanitizeText は入力テキストからすべてのHTMLタグを除去し、
	// 前後の空白をトリムして返す。
	// script, img, a等のタグ本体は除去されるが、内包するテキストは残る。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(input string) string
}

// inputSanitizer はInputSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type inputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはタグを一切許可しないため、入力はプレーンテキストに正規化される。
func NewInputSanitizer() *inputSanitizer {
	return &inputSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力テキストをサニタイズしてプレーンテキストを返す。
func (s *inputSanitizer) SanitizeText(input string) string {
	return strings.TrimSpace(s.policy.Sanitize(input))
}
