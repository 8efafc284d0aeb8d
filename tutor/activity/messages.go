package activity

// Fixed in-language messages for locally handled outcomes. Everything else
// the student sees is generated by the classifier.
const (
	// MsgReadingGuidance is sent when a reply arrives with no open reading turn.
	MsgReadingGuidance = "請先輸入 'reading' 開始今日閱讀任務 ✍️"
	// MsgOpenGuidance is sent when a reply arrives with no open reflective turn.
	MsgOpenGuidance = "請先輸入 'reflect' 開始開放式閱讀任務 ✍️"
	// MsgVocabGuidance is sent when a reply arrives with no open vocab turn.
	MsgVocabGuidance = "請先輸入 'vocab' 開始今日詞彙任務 ✍️"

	// MsgRedirect declines chatter unrelated to English learning.
	MsgRedirect = "呢個問題好有趣，不過我哋而家專心學英文先啦 😊"
	// MsgOpenRedirect steers an off-topic reflective reply back to the passage.
	MsgOpenRedirect = "呢個問題好有趣，但不如我哋先集中討論文章內容 😄"

	// MsgOpenQuestionPrefix labels an outgoing open-ended question.
	MsgOpenQuestionPrefix = "📝 開放式問題：\n"

	// MsgApology is sent when a collaborator fails mid-turn.
	MsgApology = "唔好意思，系統而家有啲問題，請遲啲再試一次 🙏"

	// MsgHelp answers the /help command.
	MsgHelp = "你好！我係你嘅英文導師 🤖\n\n" +
		"輸入 'start' 同我打招呼\n" +
		"輸入 'reading' 開始閱讀理解練習\n" +
		"輸入 'reflect' 開始開放式閱讀討論\n" +
		"輸入 'vocab' 開始詞彙練習\n\n" +
		"有唔明嘅英文問題都可以直接問我！"
)
