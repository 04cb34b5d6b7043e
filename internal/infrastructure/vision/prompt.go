package vision

// extractionPrompt is the fixed instruction sent with every label photo. It
// pins the exact JSON schema the parser expects and mandates the sentinel
// error object for images that are not readable food labels.
const extractionPrompt = `Bu gıda ürününün etiketini analiz et ve aşağıdaki JSON formatında yanıt ver. Sadece JSON döndür, başka bir şey yazma.

{
  "name": "Ürün adı",
  "brand": "Marka",
  "category": "Kategori (Atıştırmalık, İçecek, Süt Ürünü, vs.)",
  "serving_size": "Porsiyon (örn: 100g)",
  "nutrition": {
    "energy": sayı (kcal),
    "protein": sayı (g),
    "carbohydrates": sayı (g),
    "sugar": sayı (g),
    "fat": sayı (g),
    "saturated_fat": sayı (g),
    "fiber": sayı (g),
    "salt": sayı (g)
  },
  "ingredients": "İçindekiler metni",
  "additives": ["E kodu listesi"],
  "nova_group": sayı (1-4),
  "nutri_score": "A/B/C/D/E veya null"
}

Eğer bu bir gıda ürünü değilse veya etiket okunamıyorsa: {"error": "Gıda ürünü tespit edilemedi"}`
