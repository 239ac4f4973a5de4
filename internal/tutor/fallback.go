package tutor

import "github.com/geulmoi/geulssaem/internal/model"

// Fixed tutor messages for each degradation path. Students see these exactly
// as written, so the wording stays warm and actionable.
const (
	msgTooShort    = "글이 너무 짧아요. 10자 이상 작성 후 '평가 받기'를 다시 시도해 주세요."
	msgUnparseable = "응답을 처리하는 중에 문제가 발생했어요. 다시 시도해주세요."
	msgMissingKey  = "평가 결과를 처리하는 중에 문제가 발생했어요. 다시 시도해주세요."
	msgBadScore    = "점수를 처리하는 중에 문제가 발생했어요. 다시 시도해주세요."
	msgTransport   = "죄송해요. 평가를 완료할 수 없었습니다. 잠시 후 다시 시도해주세요."
	msgExhausted   = "여러 번 시도했지만 평가를 완료할 수 없었어요. 네트워크 상태를 확인하고 다시 시도해주세요."
	msgChatApology = "죄송해요. 답변을 생성하는 중에 문제가 발생했어요. 다시 질문해 주세요! 😊"
)

// fallbackFor maps a terminal failure reason to the score and message the
// student receives. The whole mapping lives here: every reason has a defined
// outcome, which is what makes evaluation total.
func fallbackFor(reason model.FallbackReason) (int, string) {
	switch reason {
	case model.FallbackTooShort:
		return 0, msgTooShort
	case model.FallbackUnparseable:
		return 50, msgUnparseable
	case model.FallbackMissingKey:
		return 50, msgMissingKey
	case model.FallbackBadScore:
		return 50, msgBadScore
	case model.FallbackTransport:
		return 30, msgTransport
	default:
		return 30, msgExhausted
	}
}
