package extraction

// closingSheetPrompt is shared by every provider. Sheets are written in Spanish,
// the JSON keys are the ones closing.RawExtraction decodes.
const closingSheetPrompt = `Analizá esta imagen de un cierre de caja de panadería (Z-Cut / Arqueo).

Extraé los datos comparativos entre:
1. "Cierre de Caja / Predeterminada" (Sistema): lo que el punto de venta dice que se vendió.
2. "Arqueo Real" (Físico): lo que se contó en la caja.

Desglose de medios de pago, para cada lado:
- "cash": Efectivo.
- "electronic": Medios electrónicos (tarjetas, QR, posnet local, transferencias).
- "deliveryApps": Delivery / Apps (PedidosYa, Rappi, Uber Eats).
- "currentAccount": Cuentas corrientes.
- "other": Otros.

Extraé también los gastos pagados con dinero de la caja ("expenses") y la diferencia
("difference" = total real - total sistema).

Devolvé ÚNICAMENTE un objeto JSON válido con este formato, sin texto extra ni bloques markdown:
{
  "date": "YYYY-MM-DD",
  "shiftNumber": "número de cierre o turno",
  "systemTotal": 0,
  "systemBreakdown": {"cash": 0, "electronic": 0, "deliveryApps": 0, "currentAccount": 0, "other": 0},
  "realTotal": 0,
  "realBreakdown": {"cash": 0, "electronic": 0, "deliveryApps": 0, "currentAccount": 0, "other": 0},
  "expenses": 0,
  "difference": 0,
  "notes": ""
}

Importante:
- Los importes son números (no texto), sin símbolo de moneda ni separador de miles.
- Si no encontrás un dato, usá null.`
