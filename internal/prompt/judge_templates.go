package prompt

// judgeSections holds the language-specific output scaffold for the
// judge verdict: the same seven-part structure rendered in each
// supported language. The first line is always the score so the single
// extraction regex stays trivial.
var judgeSections = map[string]string{
	"en": `Score: NN/100

## Summary
(two or three sentences)

## Strengths
- ...

## Risks
- ...

## Recommendations
- ...

## Final Call
(proceed / pivot / drop, one sentence of justification)

## Confidence
(high / medium / low, with the main source of uncertainty)`,

	"es": `Score: NN/100

## Resumen
(dos o tres frases)

## Fortalezas
- ...

## Riesgos
- ...

## Recomendaciones
- ...

## Decisión Final
(avanzar / pivotar / descartar, una frase de justificación)

## Confianza
(alta / media / baja, con la principal fuente de incertidumbre)`,

	"pt": `Score: NN/100

## Resumo
(duas ou três frases)

## Pontos Fortes
- ...

## Riscos
- ...

## Recomendações
- ...

## Decisão Final
(avançar / pivotar / descartar, uma frase de justificação)

## Confiança
(alta / média / baixa, com a principal fonte de incerteza)`,

	"fr": `Score: NN/100

## Résumé
(deux ou trois phrases)

## Points Forts
- ...

## Risques
- ...

## Recommandations
- ...

## Décision Finale
(poursuivre / pivoter / abandonner, une phrase de justification)

## Confiance
(élevée / moyenne / faible, avec la principale source d'incertitude)`,

	"de": `Score: NN/100

## Zusammenfassung
(zwei bis drei Sätze)

## Stärken
- ...

## Risiken
- ...

## Empfehlungen
- ...

## Endgültige Entscheidung
(weitermachen / umschwenken / verwerfen, ein Satz Begründung)

## Zuversicht
(hoch / mittel / niedrig, mit der größten Unsicherheitsquelle)`,

	"zh": `Score: NN/100

## 摘要
（两到三句话）

## 优势
- ...

## 风险
- ...

## 建议
- ...

## 最终裁定
（推进 / 转型 / 放弃，一句话说明理由）

## 置信度
（高 / 中 / 低，并说明主要不确定性来源）`,
}

// judgeSectionsFor returns the scaffold for a base language, falling
// back to English.
func judgeSectionsFor(base string) string {
	if s, ok := judgeSections[base]; ok {
		return s
	}
	return judgeSections["en"]
}
