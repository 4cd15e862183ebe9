package ingest

import "strings"

// ============================================================================
// COLUMN ALIAS TABLE — Canonical Field Resolution
// ============================================================================
// Uploaded headers arrive in many spellings and two languages. Each canonical
// field maps to a set of accepted header aliases; lookup is case-insensitive,
// trimmed, first-match against the uploaded header row. Unmatched columns are
// ignored.
// ============================================================================

// Field is a canonical column role in a sales dataset.
type Field string

const (
	FieldProduct  Field = "product"
	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"
	FieldDate     Field = "date"
	FieldRegion   Field = "region"
	FieldDiscount Field = "discount"
	FieldCurrency Field = "currency"
	FieldID       Field = "id"
)

// requiredFields must all resolve for an upload to be usable.
// Quantity, date and region are recoverable: quantity defaults to 1,
// date and region to absent.
var requiredFields = []Field{FieldProduct, FieldPrice}

// aliasTable maps every accepted header spelling (lowercased) to its
// canonical field. Russian and English spellings cover the datasets the
// app is used with; extend here when a new export format shows up.
var aliasTable = buildAliasTable(map[Field][]string{
	FieldProduct: {
		// Russian
		"имя", "название", "наименование", "товар", "продукт", "изделие",
		"товарный знак", "бренд", "марка", "модель", "артикул", "код товара",
		"название товара", "наименование позиции", "описание", "продукция",
		"категория товара", "линейка", "серия",
		// English
		"name", "product", "item", "goods", "article", "sku", "model",
		"brand", "title", "description", "product name", "item name",
		"product title", "product description", "product code", "stock code",
		"item code", "product group", "series", "line",
	},
	FieldPrice: {
		// Russian
		"цена", "стоимость", "сумма", "ценник", "цена продажи", "цена покупки",
		"выручка", "розничная цена", "оптовая цена", "себестоимость",
		"цена за единицу", "цена товара", "цена позиции", "цена без скидки",
		"финальная цена", "рекомендованная цена", "рыночная цена",
		// English
		"price", "cost", "amount", "retail price", "wholesale price",
		"unit price", "sale price", "purchase price", "list price",
		"market price", "msrp", "recommended price", "final price",
		"item price", "product price", "price per unit",
	},
	FieldQuantity: {
		// Russian
		"количество", "кол-во", "число", "объем", "продажи", "запас",
		"остаток", "количество на складе", "доступное количество",
		"количество товара", "количество позиций", "штук", "упаковок",
		// English
		"quantity", "qty", "number", "count", "stock", "inventory",
		"available quantity", "stock quantity", "items in stock", "units",
		"packages", "pieces",
	},
	FieldDate: {
		// Russian
		"дата", "дата продажи", "дата покупки", "дата создания",
		"дата обновления", "дата транзакции", "дата заказа", "дата поставки",
		"дата выполнения", "время", "период", "год", "месяц", "день", "срок",
		// English
		"date", "sale date", "purchase date", "creation date", "update date",
		"transaction date", "order date", "delivery date", "fulfillment date",
		"time", "period", "year", "month", "day", "datetime", "timestamp",
		"invoice_date", "invoicedate",
	},
	FieldRegion: {
		// Russian
		"регион", "область", "город", "страна", "территория", "зона",
		"район", "округ", "местоположение", "локация", "место", "адрес",
		"филиал", "магазин", "точка продаж", "склад", "центр", "подразделение",
		// English
		"region", "area", "city", "country", "territory", "zone", "district",
		"location", "place", "address", "branch", "store", "shop", "outlet",
		"warehouse", "center", "division", "department", "shopping_mall",
	},
	FieldDiscount: {
		"скидка", "процент скидки", "размер скидки",
		"discount", "discount percent", "discount amount",
	},
	FieldCurrency: {
		"валюта", "код валюты", "currency", "currency code",
	},
	FieldID: {
		"ид", "код", "уникальный код", "идентификатор",
		"id", "code", "unique code", "identifier",
	},
})

func buildAliasTable(sets map[Field][]string) map[string]Field {
	table := make(map[string]Field)
	for field, aliases := range sets {
		for _, alias := range aliases {
			table[alias] = field
		}
	}
	return table
}

// ColumnMap records which uploaded column index serves each canonical field.
type ColumnMap map[Field]int

// Has reports whether a canonical field was matched.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Fields returns the matched canonical fields in canonical order.
func (m ColumnMap) Fields() []Field {
	ordered := []Field{FieldProduct, FieldPrice, FieldQuantity, FieldDate,
		FieldRegion, FieldDiscount, FieldCurrency, FieldID}
	var out []Field
	for _, f := range ordered {
		if m.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// MatchColumns resolves an uploaded header row against the alias table.
// First match wins per canonical field; later duplicates are ignored.
func MatchColumns(headers []string) ColumnMap {
	matched := make(ColumnMap)
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		field, ok := aliasTable[key]
		if !ok {
			continue
		}
		if _, seen := matched[field]; seen {
			continue
		}
		matched[field] = i
	}
	return matched
}

// missingRequired lists required fields absent from a ColumnMap.
func missingRequired(m ColumnMap) []Field {
	var missing []Field
	for _, f := range requiredFields {
		if !m.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}
