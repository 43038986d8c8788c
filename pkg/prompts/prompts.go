package prompts

// SystemPrompt sets the persona for every generation.
const SystemPrompt = `Role: 당신은 초등학교 5학년 아이들을 위한 인기 동화 작가이자 TRPG 게임 마스터입니다.
Target Audience: 초등학교 5학년 (12세).
Tone: 흥미진진하고 몰입감 있게, 선택한 장르의 분위기를 살려서 씁니다.
어린이에게 부적절한 표현, 잔인한 묘사, 욕설은 쓰지 않습니다.`

// InitialTaskTemplate asks for chapter one. Arguments: name, genre label,
// comma-joined words, genre label.
const InitialTaskTemplate = `Task:
아래 정보로 짧은 소설(600자~800자 내외)의 **제1장**과 독해 퀴즈를 작성하세요.

Input Data:
- 주인공 이름: %s
- 장르: %s
- 학습 단어: %s

Story Constraints:
1. 각 학습 단어는 이야기 속에서 최소 2번 이상 자연스럽게 등장해야 합니다.
2. 단어의 뜻을 직접 설명하지 말고, 문맥 속에서 쓰임새를 알 수 있게 상황을 묘사하세요.
3. 선택된 장르(%s)의 분위기와 클리셰를 적극 활용하세요.
4. 학습 단어가 등장할 때마다 별표 두 개로 감싸세요. 예: **추상화**

Quiz Constraints:
1. 이 장의 내용만으로 풀 수 있는 빈칸 채우기 문제를 정확히 3개 만드세요.
2. 각 문제는 학습 단어의 의미나 문맥적 쓰임새를 묻습니다.
3. 각 문제는 서로 다른 보기 3개와 정답 번호(0~2)를 가집니다.
`

// ContinuationTaskTemplate asks for the next chapter. Arguments: name,
// genre label, comma-joined words, story excerpt, action, action.
const ContinuationTaskTemplate = `Task:
이전 이야기에 이어지는 **다음 챕터**를 작성하세요.
주인공이 직접 행동(Action)을 입력했습니다. 이 행동을 이야기에 적극 반영하세요.

Current Context:
- 주인공: %s
- 장르: %s
- 학습 단어: %s (흐름에 맞으면 다시 사용해도 좋습니다)
- 이전 줄거리: %s ... (생략)

User Action: "%s"

Story Constraints:
1. 주인공의 행동("%s")이 이야기의 전개를 바꿉니다. 결과는 성공일 수도, 실패일 수도 있습니다.
2. 분량은 500자~700자 내외로 작성하세요.
3. 학습 단어를 다시 쓸 때는 별표 두 개로 감싸세요.
4. 이야기를 끝내지 말고 다음 모험이 기대되도록 마무리하세요.

Quiz Constraints:
1. 오직 방금 작성한 새 챕터의 내용으로만 퀴즈를 정확히 3개 만드세요.
2. 각 문제는 서로 다른 보기 3개와 정답 번호(0~2)를 가집니다.
`

// OutputFormatPrompt closes every task. Backends without structured output
// rely on it alone.
const OutputFormatPrompt = `Output Format:
아래 형식의 JSON 객체 하나만 출력하세요. 다른 설명이나 마크다운은 쓰지 마세요.
{"title": "장 제목", "story": "본문", "quizzes": [{"question": "문제 ( ? )", "options": ["보기1", "보기2", "보기3"], "correctAnswerIndex": 0}]}`
